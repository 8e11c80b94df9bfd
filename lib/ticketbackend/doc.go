// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketbackend is an in-memory ticket backend for development
// and tests. [Desk] holds the tickets, applies reads and posts, and
// serves them over the socket protocol once [Desk.Register] has added
// its actions to a service.SocketServer.
//
// Free-text search uses fzf's fuzzy matcher over subject, description,
// and message bodies. Seed files are JSON with comments and trailing
// commas allowed (see [LoadSeedFile]).
package ticketbackend
