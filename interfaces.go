// interfaces.go: public interfaces for flowtrack
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	"time"

	timecache "github.com/agilira/go-timecache"
)

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeSource provides the current time as Unix seconds. This seam allows
// injecting a fast cached clock in production and a deterministic clock in
// tests.
type TimeSource interface {
	Now() int64
}

// MetricsCollector records table/writer operation outcomes. Config.Validate
// installs NoOpMetricsCollector when nil, so call sites never nil-check it.
type MetricsCollector interface {
	RecordProcessFlow(matched bool, inserted bool)
	RecordExpired(n int)
	RecordDropped(reason string)
	RecordUpdateWritten(n int)
	RecordHeavyHitters(n int)
}

// NoOpMetricsCollector discards every recorded event.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordProcessFlow(matched, inserted bool) {}
func (NoOpMetricsCollector) RecordExpired(n int)                      {}
func (NoOpMetricsCollector) RecordDropped(reason string)              {}
func (NoOpMetricsCollector) RecordUpdateWritten(n int)                {}
func (NoOpMetricsCollector) RecordHeavyHitters(n int)                 {}

// Anonymizer turns a raw IPv4 address into a 64-bit digest for the
// compressed update stream. It is a pure function: same input, same output,
// no shared state. An error return aborts the in-progress WriteUpdate call.
type Anonymizer interface {
	Anonymize(ip uint32) (uint64, error)
}

// systemTimeSource is the default TimeSource, backed by go-timecache's
// cached clock to avoid a syscall on every ProcessFlow call.
type systemTimeSource struct{}

func (systemTimeSource) Now() int64 {
	return timecache.CachedTimeNano() / int64(time.Second)
}
