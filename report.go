// report.go: the thresholded-flows (heavy-hitter) report
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// WriteThresholdedIPs snapshots every OccupiedUnsent slot whose packet
// count is >= the table's FlowThreshold into a truncated plaintext file at
// path. It does not mutate any table state and does not apply the
// anonymization policy (the report is for local operator inspection).
//
// The fourth field of each record is the flow's packet count, not its
// protocol, despite the grammar table's column naming in spec.md §6 — this
// is the behavior as observed in the system this spec was distilled from
// (spec.md §9), preserved here rather than "fixed".
//
// If ThresholdingEnabled is false, this returns immediately without
// touching path.
func (w *Writer) WriteThresholdedIPs(path string, sessionID uint64, sequenceNumber int64) error {
	t := w.table
	if !t.cfg.ThresholdingEnabled {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return NewErrSinkWriteFailed("write_thresholded_ips_open", err)
	}

	bw := bufio.NewWriter(f)
	qualifying := 0
	opErr := w.writeThresholdedBody(bw, sessionID, sequenceNumber, &qualifying)

	if opErr == nil {
		opErr = flushErr(bw)
	}
	if closeErr := f.Close(); opErr == nil && closeErr != nil {
		opErr = NewErrSinkWriteFailed("write_thresholded_ips_close", closeErr)
	}
	if opErr != nil {
		return opErr
	}

	t.cfg.Logger.Debug("thresholded flows written", "count", qualifying)
	t.cfg.MetricsCollector.RecordHeavyHitters(qualifying)

	if w.Audit != nil {
		if err := w.Audit.RecordReport(sessionID, sequenceNumber, qualifying, path); err != nil {
			t.cfg.Logger.Warn("audit log record failed", "error", err.Error())
		}
	}
	return nil
}

func (w *Writer) writeThresholdedBody(bw *bufio.Writer, sessionID uint64, sequenceNumber int64, qualifying *int) error {
	t := w.table

	if _, err := fmt.Fprintf(bw, "%d %d\n\n", sessionID, sequenceNumber); err != nil {
		return NewErrSinkWriteFailed("write_thresholded_ips_header", err)
	}

	var opErr error
	t.forEachSlot(func(idx int, e *Entry) bool {
		if e.Occupancy != OccupiedUnsent || e.PacketCount() < t.cfg.FlowThreshold {
			return true
		}

		line := fmt.Sprintf("%d %s %s %d\n", idx,
			strconv.FormatUint(uint64(e.Key.SrcIP), 16),
			strconv.FormatUint(uint64(e.Key.DstIP), 16),
			e.PacketCount())
		if _, err := bw.WriteString(line); err != nil {
			opErr = NewErrSinkWriteFailed("write_thresholded_ips_body", err)
			return false
		}
		*qualifying++
		return true
	})
	return opErr
}

func flushErr(bw *bufio.Writer) error {
	if err := bw.Flush(); err != nil {
		return NewErrSinkWriteFailed("write_thresholded_ips_flush", err)
	}
	return nil
}
