// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the support desk socket protocol: a CBOR
// request-response exchange over a unix domain socket.
//
// Each connection carries exactly one request. The client writes a
// CBOR map holding an "action" field plus action-specific fields; the
// server routes it to the [ActionFunc] registered for that action and
// writes back a [Response] envelope:
//
//	{ok: true, data: <cbor>}       success, data omitted for nil results
//	{ok: false, error: "message"}  failure
//
// [ServiceClient] is the matching client. A failure response surfaces
// as a *[ServiceError]; connection and decoding problems are returned
// as ordinary wrapped errors so callers can tell "the backend said no"
// from "the backend could not be reached".
//
// The protocol carries no authentication. Access is controlled by the
// permissions of the socket file.
package service
