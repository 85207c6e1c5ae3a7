// config.go: configuration for the flow table and update writer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import "github.com/agilira/flowtrack/internal/anonymize"

// Config holds the tunable constants spec.md §6 calls system policy rather
// than fixed values.
type Config struct {
	// Capacity is the fixed number of entry slots. Must be > 0.
	// Default: DefaultCapacity.
	Capacity int

	// MaxProbes bounds the worst-case work per ProcessFlow call. Must be
	// materially smaller than Capacity. Default: DefaultMaxProbes.
	MaxProbes int

	// C1, C2 are the quadratic-probing coefficients:
	// slot(i) = (hash + C1*i + C2*i*i) mod Capacity.
	// Default: DefaultC1, DefaultC2.
	C1, C2 uint32

	// ExpirationSeconds is how long a flow may go unrefreshed before it
	// becomes eligible for lazy expiration. Default: DefaultExpirationSeconds.
	ExpirationSeconds int64

	// MinOffset, MaxOffset bound the representable range of a live entry's
	// last-update offset. Default: DefaultMinOffset, DefaultMaxOffset.
	MinOffset, MaxOffset int32

	// FlowThreshold is the packet count at which a flow qualifies as a
	// heavy hitter for WriteThresholdedIPs. Default: DefaultFlowThreshold.
	FlowThreshold int

	// AnonymizationEnabled selects the 64-bit anonymized digest over the
	// raw 32-bit IP in the compressed update stream.
	AnonymizationEnabled bool

	// ThresholdingEnabled disables packet counting and the thresholded-flows
	// report entirely when false. When false, WriteThresholdedIPs returns
	// immediately without touching its output path.
	ThresholdingEnabled bool

	// HashFunc computes the probe hash. If nil, defaultHash (FNV-1a/32) is used.
	HashFunc HashFunc

	// TimeSource provides current time. If nil, a go-timecache-backed
	// default is used.
	TimeSource TimeSource

	// Logger is used for debugging and monitoring. If nil, NoOpLogger is used.
	Logger Logger

	// MetricsCollector records operation outcomes. If nil, NoOpMetricsCollector is used.
	MetricsCollector MetricsCollector

	// Anonymizer computes the 64-bit IP digest. If nil and AnonymizationEnabled
	// is true, a default xxhash-backed anonymizer is used.
	Anonymizer Anonymizer
}

// Validate normalizes the configuration, applying sensible defaults. It
// never returns an error — like the teacher's Config.Validate, it only
// normalizes.
func (c *Config) Validate() {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.MaxProbes <= 0 {
		c.MaxProbes = DefaultMaxProbes
	}
	if c.MaxProbes > c.Capacity {
		c.MaxProbes = c.Capacity
	}
	if c.C1 == 0 && c.C2 == 0 {
		c.C1, c.C2 = DefaultC1, DefaultC2
	}
	if c.ExpirationSeconds <= 0 {
		c.ExpirationSeconds = DefaultExpirationSeconds
	}
	if c.MinOffset == 0 && c.MaxOffset == 0 {
		c.MinOffset, c.MaxOffset = DefaultMinOffset, DefaultMaxOffset
	}
	if c.FlowThreshold <= 0 {
		c.FlowThreshold = DefaultFlowThreshold
	}
	if c.HashFunc == nil {
		c.HashFunc = defaultHash
	}
	if c.TimeSource == nil {
		c.TimeSource = systemTimeSource{}
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	if c.Anonymizer == nil {
		c.Anonymizer = anonymize.Digest{}
	}
}

// DefaultConfig returns a configuration with sensible defaults. Unlike the
// numeric fields, ThresholdingEnabled has no invalid zero value to detect,
// so a bare Config{} literal leaves it off; DefaultConfig turns it on, since
// heavy-hitter reporting is on by default in production use.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Validate()
	cfg.ThresholdingEnabled = true
	return cfg
}
