// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/supportdesk/lib/codec"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// Fingerprint is a BLAKE3 digest of a ticket's deterministic CBOR
// encoding. Two snapshots of a ticket with equal fingerprints carry
// identical content.
type Fingerprint [32]byte

// String returns the first 12 hex characters, enough for log lines.
func (fingerprint Fingerprint) String() string {
	return hex.EncodeToString(fingerprint[:6])
}

// fingerprintKey is the ASCII domain name zero-padded to the 32 bytes
// BLAKE3 keyed mode requires.
var fingerprintKey = [32]byte{
	's', 'u', 'p', 'p', 'o', 'r', 't', 'd', 'e', 's', 'k', '.', 't', 'i', 'c', 'k',
	'e', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// FingerprintTicket hashes the ticket's content. The zero Fingerprint
// is returned if the ticket cannot be encoded, which makes it compare
// unequal to any real fingerprint.
func FingerprintTicket(ticket *support.Ticket) Fingerprint {
	var fingerprint Fingerprint
	data, err := codec.Marshal(ticket)
	if err != nil {
		return fingerprint
	}
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("ticketsync: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint
}
