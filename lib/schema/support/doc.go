// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package support defines the customer-support ticket model shared by
// the console synchronization engine, the socket transport, and the
// development backend.
//
// A [Ticket] carries a chat-style thread of [Message] values (append
// only, chronological), administrator-only [InternalNote] values, and
// a [ReadReceipts] map recording when each [Role] last read the
// thread. [Filters] describes the list query the console polls with.
//
// Types use `json` struct tags: they travel as CBOR on the service
// socket and as JSON in seed files, and fxamacker/cbor reads `json`
// tags when `cbor` tags are absent.
//
// This package depends on no other packages in this module.
package support
