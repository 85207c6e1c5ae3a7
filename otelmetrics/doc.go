// Package otelmetrics provides OpenTelemetry integration for flowtrack's
// flow table.
//
// # Overview
//
// This package implements the flowtrack.MetricsCollector interface using
// OpenTelemetry, so a running agent's flow-table pressure (live flows,
// expirations, drops, emitted updates, heavy hitters) can be exported to
// any OTEL-compatible backend (Prometheus, Jaeger, DataDog, Grafana).
//
// The package is a separate module to keep the flowtrack core lightweight.
// Agents that don't export metrics don't pay for the OTEL dependencies.
//
// # Quick Start
//
//	import (
//	    "github.com/agilira/flowtrack"
//	    flowtrackotel "github.com/agilira/flowtrack/otelmetrics"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := flowtrackotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := flowtrack.DefaultConfig()
//	cfg.MetricsCollector = collector
//	table := flowtrack.NewTable(cfg)
//
// # Metrics Exposed
//
// Counters:
//   - flowtrack_matched_total: flows that matched an existing live entry
//   - flowtrack_inserted_total: flows that were newly inserted
//   - flowtrack_expired_total: lazily expired entries
//   - flowtrack_dropped_total{reason}: insert attempts that could not be placed
//   - flowtrack_updates_written_total: slots emitted by WriteUpdate calls
//   - flowtrack_heavy_hitters_total: qualifying flows emitted by WriteThresholdedIPs
//
// Gauge:
//   - flowtrack_live_flows: inserted flows minus expired flows, as recorded
//     by this collector
//
// # Architecture
//
// Separation of concerns mirrors the core module: flowtrack defines the
// MetricsCollector interface and ships a NoOpMetricsCollector default, so
// there is zero OTEL dependency and zero overhead unless this package is
// wired in explicitly.
package otelmetrics
