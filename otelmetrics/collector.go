// collector.go: OpenTelemetry-backed flowtrack.MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otelmetrics

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/agilira/flowtrack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func attributeReason(reason string) attribute.KeyValue {
	return attribute.String("reason", reason)
}

// Compile-time interface check.
var _ flowtrack.MetricsCollector = (*OTelMetricsCollector)(nil)

// OTelMetricsCollector implements flowtrack.MetricsCollector using
// OpenTelemetry.
//
// Thread-safety: safe for concurrent use by multiple goroutines, though the
// flowtrack core itself only ever calls it from the single goroutine that
// owns the Table (spec.md §5).
type OTelMetricsCollector struct {
	matched        metric.Int64Counter
	inserted       metric.Int64Counter
	expired        metric.Int64Counter
	dropped        metric.Int64Counter
	updatesWritten metric.Int64Counter
	heavyHitters   metric.Int64Counter
	liveGauge      metric.Int64ObservableGauge

	live atomic.Int64
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/flowtrack"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful when running more than one
// Table in the same process.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a collector backed by provider. provider
// must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/flowtrack"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	c.matched, err = meter.Int64Counter(
		"flowtrack_matched_total",
		metric.WithDescription("Total number of ProcessFlow calls that matched an existing live entry"),
	)
	if err != nil {
		return nil, err
	}

	c.inserted, err = meter.Int64Counter(
		"flowtrack_inserted_total",
		metric.WithDescription("Total number of ProcessFlow calls that inserted a new entry"),
	)
	if err != nil {
		return nil, err
	}

	c.expired, err = meter.Int64Counter(
		"flowtrack_expired_total",
		metric.WithDescription("Total number of entries lazily expired during probing"),
	)
	if err != nil {
		return nil, err
	}

	c.dropped, err = meter.Int64Counter(
		"flowtrack_dropped_total",
		metric.WithDescription("Total number of ProcessFlow calls that could not be placed"),
	)
	if err != nil {
		return nil, err
	}

	c.updatesWritten, err = meter.Int64Counter(
		"flowtrack_updates_written_total",
		metric.WithDescription("Total number of slots emitted by WriteUpdate"),
	)
	if err != nil {
		return nil, err
	}

	c.heavyHitters, err = meter.Int64Counter(
		"flowtrack_heavy_hitters_total",
		metric.WithDescription("Total number of qualifying flows emitted by WriteThresholdedIPs"),
	)
	if err != nil {
		return nil, err
	}

	c.liveGauge, err = meter.Int64ObservableGauge(
		"flowtrack_live_flows",
		metric.WithDescription("Approximate number of live flows, derived from inserted/expired deltas"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(c.live.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// RecordProcessFlow implements flowtrack.MetricsCollector.
func (c *OTelMetricsCollector) RecordProcessFlow(matched, inserted bool) {
	ctx := context.Background()
	if matched {
		c.matched.Add(ctx, 1)
	}
	if inserted {
		c.inserted.Add(ctx, 1)
		c.live.Add(1)
	}
}

// RecordExpired implements flowtrack.MetricsCollector.
func (c *OTelMetricsCollector) RecordExpired(n int) {
	c.expired.Add(context.Background(), int64(n))
	c.live.Add(-int64(n))
}

// RecordDropped implements flowtrack.MetricsCollector.
func (c *OTelMetricsCollector) RecordDropped(reason string) {
	c.dropped.Add(context.Background(), 1, metric.WithAttributes(
		attributeReason(reason),
	))
}

// RecordUpdateWritten implements flowtrack.MetricsCollector.
func (c *OTelMetricsCollector) RecordUpdateWritten(n int) {
	c.updatesWritten.Add(context.Background(), int64(n))
}

// RecordHeavyHitters implements flowtrack.MetricsCollector.
func (c *OTelMetricsCollector) RecordHeavyHitters(n int) {
	c.heavyHitters.Add(context.Background(), int64(n))
}
