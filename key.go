// key.go: the 5-tuple flow key and its wire/hash byte layout
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import "encoding/binary"

// FlowKey is the canonical flow identifier: a unidirectional 5-tuple.
// Keys are compared for exact equality.
type FlowKey struct {
	SrcIP   uint32
	DstIP   uint32
	Proto   uint8
	SrcPort uint16
	DstPort uint16
}

// keyBytes is the fixed 13-byte layout hashed for probing: source IP,
// destination IP, source port, destination port, protocol. This order is
// part of the contract (spec.md §4.1) so alternate hash functions injected
// by tests observe the same byte sequence production does.
func (k FlowKey) keyBytes() [13]byte {
	var b [13]byte
	binary.BigEndian.PutUint32(b[0:4], k.SrcIP)
	binary.BigEndian.PutUint32(b[4:8], k.DstIP)
	binary.BigEndian.PutUint16(b[8:10], k.SrcPort)
	binary.BigEndian.PutUint16(b[10:12], k.DstPort)
	b[12] = k.Proto
	return b
}

// HashFunc computes a 32-bit hash over an arbitrary byte range. It has no
// security requirement; it is replaceable for test purposes (spec.md §9,
// "hash-function injection") so tests can force collisions deterministically.
type HashFunc func([]byte) uint32

// defaultHash is the production hash: FNV-1a, 32-bit, the same algorithm
// this stack already uses for its other hash-table primitive, narrowed from
// 64 to 32 bits.
func defaultHash(data []byte) uint32 {
	const (
		fnv32Offset = 2166136261
		fnv32Prime  = 16777619
	)

	hash := uint32(fnv32Offset)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= fnv32Prime
	}
	return hash
}
