// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package consoleui is the terminal front end of the support console:
// a bubbletea program that renders a [ticketsync.Session].
//
// The screen is a filter bar, a two-pane content area (ticket list on
// the left, the open ticket's conversation on the right), a reply
// input, and a status bar. The model never holds authoritative state:
// it re-reads [ticketsync.Session.Snapshot] whenever the session
// publishes an event, and forwards every user action (selection,
// filters, draft edits, scrolling, send) to the session.
//
// [Bell] implements [ticketsync.Alerter] by ringing the terminal bell.
// [StatusLogHandler] routes warnings from the sync engine into the
// status bar, since the program owns the terminal and stderr output
// would corrupt the display.
package consoleui
