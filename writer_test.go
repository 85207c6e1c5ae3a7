// writer_test.go: tests for the update-stream writer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	"bytes"
	"errors"
	"testing"
)

// Round-trip: write_update called twice without an intervening
// process_flow emits a body-less second record.
func TestWriteUpdate_SecondCallIsBodyless(t *testing.T) {
	tbl := NewTable(Config{Capacity: 64})
	writer := NewWriter(tbl)

	key := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 1, DstPort: 2}
	if _, err := tbl.ProcessFlow(key, 0); err != nil {
		t.Fatalf("ProcessFlow: %v", err)
	}

	var first bytes.Buffer
	if err := writer.WriteUpdate(&first); err != nil {
		t.Fatalf("first WriteUpdate: %v", err)
	}

	var second bytes.Buffer
	if err := writer.WriteUpdate(&second); err != nil {
		t.Fatalf("second WriteUpdate: %v", err)
	}

	want := "0 1 0 0\n\n"
	if second.String() != want {
		t.Errorf("second WriteUpdate = %q, want %q", second.String(), want)
	}
}

// Invariant 5: after write_update succeeds, no slot is OccupiedUnsent.
func TestWriteUpdate_PromotesEveryUnsentSlot(t *testing.T) {
	tbl := NewTable(Config{Capacity: 64})
	writer := NewWriter(tbl)

	for i := 0; i < 5; i++ {
		key := FlowKey{SrcIP: uint32(i), DstIP: 1, Proto: 6, SrcPort: 1, DstPort: 2}
		if _, err := tbl.ProcessFlow(key, 0); err != nil {
			t.Fatalf("ProcessFlow: %v", err)
		}
	}

	if err := writer.WriteUpdate(&bytes.Buffer{}); err != nil {
		t.Fatalf("WriteUpdate: %v", err)
	}

	for i, e := range tbl.entries {
		if e.Occupancy == OccupiedUnsent {
			t.Errorf("slot %d still unsent after WriteUpdate", i)
		}
	}
}

// Anonymization: enabling it swaps the raw-IP hex for a 64-bit digest.
func TestWriteUpdate_AnonymizationChangesOutput(t *testing.T) {
	key := FlowKey{SrcIP: ipv4(1, 1, 1, 1), DstIP: ipv4(2, 2, 2, 2), Proto: 6, SrcPort: 1000, DstPort: 80}

	plain := NewTable(Config{Capacity: 64})
	if _, err := plain.ProcessFlow(key, 0); err != nil {
		t.Fatalf("ProcessFlow: %v", err)
	}
	var plainBuf bytes.Buffer
	if err := NewWriter(plain).WriteUpdate(&plainBuf); err != nil {
		t.Fatalf("WriteUpdate: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Capacity = 64
	cfg.AnonymizationEnabled = true
	anon := NewTable(cfg)
	if _, err := anon.ProcessFlow(key, 0); err != nil {
		t.Fatalf("ProcessFlow: %v", err)
	}
	var anonBuf bytes.Buffer
	if err := NewWriter(anon).WriteUpdate(&anonBuf); err != nil {
		t.Fatalf("WriteUpdate: %v", err)
	}

	if plainBuf.String() == anonBuf.String() {
		t.Error("expected anonymized output to differ from raw-IP output")
	}
	if !bytes.Contains(plainBuf.Bytes(), []byte("1010101")) {
		t.Errorf("expected raw hex IP in unanonymized output, got %q", plainBuf.String())
	}
}

type failingAnonymizer struct{}

func (failingAnonymizer) Anonymize(ip uint32) (uint64, error) {
	return 0, errors.New("anonymize: boom")
}

// Abort: an anonymization failure aborts WriteUpdate with an
// anonymize-failed error.
func TestWriteUpdate_AnonymizeFailureAborts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 64
	cfg.AnonymizationEnabled = true
	cfg.Anonymizer = failingAnonymizer{}
	tbl := NewTable(cfg)
	writer := NewWriter(tbl)

	key := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 1, DstPort: 2}
	if _, err := tbl.ProcessFlow(key, 0); err != nil {
		t.Fatalf("ProcessFlow: %v", err)
	}

	err := writer.WriteUpdate(&bytes.Buffer{})
	if err == nil {
		t.Fatal("expected anonymize failure to abort WriteUpdate")
	}
	if GetErrorCode(err) != ErrCodeAnonymizeFailed {
		t.Errorf("expected anonymize-failed error, got %v", err)
	}
}

type failingWriter struct {
	failAfter int
	writes    int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.failAfter {
		return 0, errors.New("sink: disk full")
	}
	return len(p), nil
}

// Abort-without-rollback: a sink write failure aborts WriteUpdate after the
// header has already been written.
func TestWriteUpdate_SinkFailureAborts(t *testing.T) {
	tbl := NewTable(Config{Capacity: 64})
	key := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 1, DstPort: 2}
	if _, err := tbl.ProcessFlow(key, 0); err != nil {
		t.Fatalf("ProcessFlow: %v", err)
	}

	writer := NewWriter(tbl)
	sink := &failingWriter{failAfter: 1}
	err := writer.WriteUpdate(sink)
	if err == nil {
		t.Fatal("expected sink write failure")
	}
	if GetErrorCode(err) != ErrCodeSinkWriteFailed {
		t.Errorf("expected sink-write-failed error, got %v", err)
	}
}
