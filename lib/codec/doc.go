// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration used on the
// support desk service socket and for ticket fingerprints.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical ticket always produces identical bytes, which is what
// lets the console compare fingerprints of two fetches to decide
// whether anything changed.
//
// Timestamps are encoded as RFC 3339 strings with nanoseconds. Unread
// counts compare message times against read receipts with a strict
// "after" test, so truncating to whole seconds would change results.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(ticket)
//	err = codec.Unmarshal(data, &ticket)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Types that also appear in JSON (seed files, CLI output) use `json`
// struct tags only; fxamacker/cbor falls back to them when `cbor` tags
// are absent. Purely internal protocol envelopes use `cbor` tags.
package codec
