// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for supportdesk
// packages.
//
// [RequireReceive], [RequireReceiveMatching], [RequireSend], and
// [RequireClosed] wrap the
// select-with-timeout safety valve so that tests never call time.After
// directly. Polling behaviour is driven by clock.Fake; these helpers
// only guard against a hung goroutine turning into a hung test run.
//
// [SocketDir] returns a short directory under /tmp for unix sockets,
// whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure.
package testutil
