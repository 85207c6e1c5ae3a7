// key_test.go: tests for FlowKey's byte layout and the default hash
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import "testing"

func TestKeyBytesLayout(t *testing.T) {
	k := FlowKey{SrcIP: 0x0a000001, DstIP: 0x0a000002, Proto: 6, SrcPort: 0x1f90, DstPort: 0x01bb}
	b := k.keyBytes()

	want := [13]byte{
		0x0a, 0x00, 0x00, 0x01, // SrcIP
		0x0a, 0x00, 0x00, 0x02, // DstIP
		0x1f, 0x90, // SrcPort
		0x01, 0xbb, // DstPort
		6, // Proto
	}
	if b != want {
		t.Errorf("keyBytes() = %v, want %v", b, want)
	}
}

func TestDefaultHashDeterministic(t *testing.T) {
	k := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 10, DstPort: 20}
	b := k.keyBytes()

	h1 := defaultHash(b[:])
	h2 := defaultHash(b[:])
	if h1 != h2 {
		t.Errorf("defaultHash not deterministic: %d != %d", h1, h2)
	}
}

func TestDefaultHashDiffersOnDifferentKeys(t *testing.T) {
	a := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 10, DstPort: 20}
	b := FlowKey{SrcIP: 1, DstIP: 2, Proto: 6, SrcPort: 10, DstPort: 21}

	ab := a.keyBytes()
	bb := b.keyBytes()
	if defaultHash(ab[:]) == defaultHash(bb[:]) {
		t.Error("expected different hashes for different keys (not required, but extremely unlikely to collide here)")
	}
}

func TestDefaultHashEmptyInput(t *testing.T) {
	// defaultHash must not panic on an empty slice.
	if defaultHash(nil) != 2166136261 {
		t.Errorf("defaultHash(nil) = %d, want FNV-32 offset basis", defaultHash(nil))
	}
}
