// errors.go: structured error handling for flowtrack operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for the four error kinds spec.md §7 defines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for flowtrack operations.
const (
	// ErrCodeTimestampOutOfRange: ProcessFlow's safety-net timestamp gate fired.
	ErrCodeTimestampOutOfRange errors.ErrorCode = "FLOWTRACK_TIMESTAMP_OUT_OF_RANGE"

	// ErrCodeProbeExhausted: ProcessFlow's probe budget was exhausted with no reusable slot.
	ErrCodeProbeExhausted errors.ErrorCode = "FLOWTRACK_PROBE_EXHAUSTED"

	// ErrCodeAnonymizeFailed: WriteUpdate's Anonymizer returned an error.
	ErrCodeAnonymizeFailed errors.ErrorCode = "FLOWTRACK_ANONYMIZE_FAILED"

	// ErrCodeSinkWriteFailed: WriteUpdate or WriteThresholdedIPs failed to write to its sink.
	ErrCodeSinkWriteFailed errors.ErrorCode = "FLOWTRACK_SINK_WRITE_FAILED"
)

const (
	msgTimestampOutOfRange = "timestamp outside representable offset range"
	msgProbeExhausted      = "probe budget exhausted with no reusable slot"
	msgAnonymizeFailed     = "ip anonymization failed"
	msgSinkWriteFailed     = "write to output sink failed"
)

// NewErrTimestampOutOfRange creates the error ProcessFlow returns when the
// timestamp gate refuses an insert. Callers should invoke
// Table.AdvanceBaseTimestamp and retry.
func NewErrTimestampOutOfRange(now, base int64, minOffset, maxOffset int32) error {
	return errors.NewWithContext(ErrCodeTimestampOutOfRange, msgTimestampOutOfRange, map[string]interface{}{
		"now":        now,
		"base":       base,
		"min_offset": minOffset,
		"max_offset": maxOffset,
	}).AsRetryable()
}

// NewErrProbeExhausted creates the error ProcessFlow returns when MaxProbes
// probes found no reusable slot. The caller should drop the packet.
func NewErrProbeExhausted(key FlowKey, maxProbes int) error {
	return errors.NewWithContext(ErrCodeProbeExhausted, msgProbeExhausted, map[string]interface{}{
		"src_ip":     key.SrcIP,
		"dst_ip":     key.DstIP,
		"proto":      key.Proto,
		"src_port":   key.SrcPort,
		"dst_port":   key.DstPort,
		"max_probes": maxProbes,
	})
}

// NewErrAnonymizeFailed creates the error WriteUpdate returns when
// anonymizing a slot's addresses fails, aborting the update.
func NewErrAnonymizeFailed(slot int, cause error) error {
	return errors.NewWithContext(ErrCodeAnonymizeFailed, msgAnonymizeFailed, map[string]interface{}{
		"slot":  slot,
		"cause": cause.Error(),
	})
}

// NewErrSinkWriteFailed creates the error returned when a write to the
// output sink fails, aborting the in-progress call.
func NewErrSinkWriteFailed(op string, cause error) error {
	return errors.NewWithContext(ErrCodeSinkWriteFailed, msgSinkWriteFailed, map[string]interface{}{
		"operation": op,
		"cause":     cause.Error(),
	})
}

// IsTimestampOutOfRange reports whether err is the timestamp-gate error.
func IsTimestampOutOfRange(err error) bool {
	return errors.HasCode(err, ErrCodeTimestampOutOfRange)
}

// IsProbeExhausted reports whether err is the probe-budget error.
func IsProbeExhausted(err error) bool {
	return errors.HasCode(err, ErrCodeProbeExhausted)
}

// IsRetryable reports whether the error can be retried by the caller
// (currently true only for the timestamp gate, after a rebase).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error, or "" if it has none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context attached to an error, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var flowErr *errors.Error
	if goerrors.As(err, &flowErr) {
		return flowErr.Context
	}
	return nil
}
