// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

// EventKind classifies a session event.
type EventKind string

const (
	// EventListMerged: a list snapshot was applied. Changed and Removed
	// carry the ticket ids that differ from the previous snapshot.
	EventListMerged EventKind = "list_merged"

	// EventDetailMerged: a detail fetch or a reply response was merged
	// into the selection.
	EventDetailMerged EventKind = "detail_merged"

	// EventSelectionChanged: the selection changed. TicketID is the
	// new selection, empty when cleared.
	EventSelectionChanged EventKind = "selection_changed"

	// EventAlert: an alert was delivered for TicketID.
	EventAlert EventKind = "alert"

	// EventStaleDiscarded: a response arrived for a selection or filter
	// set that is no longer current, or was older than the state it
	// would replace, and was dropped.
	EventStaleDiscarded EventKind = "stale_discarded"

	// EventFetchFailed: a polling fetch failed. Err carries the cause.
	EventFetchFailed EventKind = "fetch_failed"
)

// Event notifies subscribers that session state changed. Subscribers
// read the new state with Session.Snapshot.
type Event struct {
	Kind     EventKind
	TicketID string
	Changed  []string
	Removed  []string
	Err      error
}
