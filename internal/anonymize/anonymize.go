// Package anonymize implements the IP-address anonymization primitive:
// a pure function mapping a raw IPv4 address to a 64-bit digest.
//
// spec.md treats this primitive as an external collaborator of the
// flow-tracking core; this package supplies the default production
// implementation flowtrack.Config wires in when AnonymizationEnabled is
// set and no Anonymizer override is provided.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package anonymize

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest is a stateless, deterministic IP-to-64-bit-digest function. It is
// not cryptographically secure; it exists to decorrelate raw addresses from
// the values written to the compressed update stream, not to resist a
// motivated adversary.
type Digest struct {
	// Salt is mixed into every digest so two independently run agents
	// produce unlinkable digests for the same address. Zero value is valid
	// (no salting).
	Salt uint64
}

// Anonymize implements flowtrack.Anonymizer.
func (d Digest) Anonymize(ip uint32) (uint64, error) {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[0:4], ip)
	binary.BigEndian.PutUint64(buf[4:12], d.Salt)
	return xxhash.Sum64(buf[:]), nil
}
