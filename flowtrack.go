// Package flowtrack implements the flow-tracking core of a passive
// network-measurement agent: a fixed-capacity, open-addressed hash table
// that aggregates observed packets into unidirectional 5-tuple flows.
//
// Example usage:
//
//	table := flowtrack.NewTable(flowtrack.Config{
//		Capacity:          1 << 16,
//		ExpirationSeconds: 300,
//	})
//
//	idx, err := table.ProcessFlow(flowtrack.FlowKey{
//		SrcIP: srcIP, DstIP: dstIP, Proto: 6, SrcPort: 1000, DstPort: 80,
//	}, time.Now().Unix())
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

const (
	// Version of the flowtrack module.
	Version = "v0.1.0-dev"

	// DefaultCapacity is the default fixed table size.
	DefaultCapacity = 1 << 16

	// DefaultMaxProbes is the default probe budget per ProcessFlow call.
	// It must stay materially smaller than Capacity so worst-case work is bounded.
	DefaultMaxProbes = 32

	// DefaultC1 and DefaultC2 are the quadratic-probing coefficients.
	DefaultC1 = 1
	DefaultC2 = 3

	// DefaultExpirationSeconds is how long a flow may go unrefreshed before
	// it becomes eligible for lazy expiration.
	DefaultExpirationSeconds = 300

	// DefaultMinOffset and DefaultMaxOffset bound last-update offsets to a
	// 20-bit-equivalent signed range, matching the "at least 20, at most 32
	// bits" design width spec.md calls for.
	DefaultMinOffset = -(1 << 20)
	DefaultMaxOffset = (1 << 20) - 1

	// DefaultFlowThreshold is the packet count at which a flow is reported
	// as a heavy hitter.
	DefaultFlowThreshold = 32

	// maxPacketCount is the saturation ceiling for the 6-bit packet counter.
	maxPacketCount = 63
)
