// writer.go: serializes newly observed flows to the compressed update stream
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	"fmt"
	"io"
	"strconv"
)

// ReportRecorder is notified after every successful WriteThresholdedIPs
// call. It exists so an audit index (internal/auditlog) can record report
// history without WriteThresholdedIPs depending on it directly.
type ReportRecorder interface {
	RecordReport(sessionID uint64, sequenceNumber int64, qualifying int, path string) error
}

// Writer streams table state to external sinks. Like Table, it holds no
// internal lock: WriteUpdate and WriteThresholdedIPs must be externally
// serialized with ProcessFlow and with each other (spec.md §5).
type Writer struct {
	table *Table

	// Audit, if set, is notified after every successful WriteThresholdedIPs call.
	Audit ReportRecorder
}

// NewWriter creates a writer over table.
func NewWriter(table *Table) *Writer {
	return &Writer{table: table}
}

// WriteUpdate emits a header line (base timestamp, live/expired/dropped
// counters — cumulative, not deltas), one body line per OccupiedUnsent
// slot, and a blank terminator line, then promotes every emitted slot to
// OccupiedSent.
//
// Any write error aborts the update; slots already promoted before the
// failure stay promoted. Anonymization failure aborts the same way.
func (w *Writer) WriteUpdate(sink io.Writer) error {
	t := w.table

	header := fmt.Sprintf("%d %d %d %d\n", t.baseTimestampSeconds, t.countLive, t.countExpired, t.countDropped)
	if _, err := io.WriteString(sink, header); err != nil {
		return NewErrSinkWriteFailed("write_update_header", err)
	}

	written := 0
	var opErr error

	t.forEachSlot(func(idx int, e *Entry) bool {
		if e.Occupancy != OccupiedUnsent {
			return true
		}

		srcHex, dstHex, err := w.hexAddrs(e.Key.SrcIP, e.Key.DstIP)
		if err != nil {
			opErr = NewErrAnonymizeFailed(idx, err)
			return false
		}

		line := fmt.Sprintf("%d %s %s %d %d %d\n", idx, srcHex, dstHex, e.Key.Proto, e.Key.SrcPort, e.Key.DstPort)
		if _, err := io.WriteString(sink, line); err != nil {
			opErr = NewErrSinkWriteFailed("write_update_body", err)
			return false
		}

		e.Occupancy = OccupiedSent
		written++
		return true
	})

	if opErr != nil {
		return opErr
	}

	if _, err := io.WriteString(sink, "\n"); err != nil {
		return NewErrSinkWriteFailed("write_update_terminator", err)
	}

	t.cfg.Logger.Debug("update written", "count", written)
	t.cfg.MetricsCollector.RecordUpdateWritten(written)
	return nil
}

// hexAddrs renders src/dst per the table's anonymization policy: raw
// 32-bit IP as hex when disabled, a 64-bit anonymized digest when enabled.
// Neither has field padding or leading zeros.
func (w *Writer) hexAddrs(src, dst uint32) (string, string, error) {
	cfg := &w.table.cfg
	if !cfg.AnonymizationEnabled {
		return strconv.FormatUint(uint64(src), 16), strconv.FormatUint(uint64(dst), 16), nil
	}

	srcDigest, err := cfg.Anonymizer.Anonymize(src)
	if err != nil {
		return "", "", err
	}
	dstDigest, err := cfg.Anonymizer.Anonymize(dst)
	if err != nil {
		return "", "", err
	}
	return strconv.FormatUint(srcDigest, 16), strconv.FormatUint(dstDigest, 16), nil
}
