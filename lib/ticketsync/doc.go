// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketsync keeps an administrator's view of the support desk
// consistent with the ticket backend and decides when a new inbound
// message deserves an audible alert.
//
// A [Session] owns the moving parts:
//
//   - [Store] holds the filtered ticket list and the selected ticket.
//     Remote snapshots are merged into it without disturbing local-only
//     state (draft reply, scroll anchor, notes panel).
//   - [ListPoller] refreshes the list on a fixed interval (5s by
//     default) for the whole life of the session.
//   - [DetailPoller] refreshes the selected ticket on a shorter
//     interval (3s) while a ticket is selected. Changing the selection
//     stops the old schedule before the new one starts, so at most one
//     detail schedule is ever live.
//   - [NotificationGate] tracks the last observed message count per
//     ticket and signals at most once per tick for a count increase
//     whose newest message came from a user and whose ticket is not
//     open.
//   - [UnreadCount] derives per-ticket unread badges from read
//     receipts.
//
// Both pollers run on goroutines driven by a [clock.Clock]. Fetches
// happen outside the session lock; every merge, gate evaluation, and
// selection change happens under it, so each merge is atomic with
// respect to the others. Responses carry the time their request was
// issued, and the store refuses to apply a response older than the one
// it already holds, so a slow fetch can never roll state back.
//
// Transport is abstracted by [Backend]; lib/ticketclient implements it
// over the support desk socket protocol.
package ticketsync
