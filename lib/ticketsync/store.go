// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"sort"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// Selection is the ticket open in the detail view together with the
// state that exists only on this console.
type Selection struct {
	// Ticket is the merged remote state of the selected ticket.
	Ticket support.Ticket

	// Loaded is false until remote data for the ticket has been
	// merged. A selection made before the ticket appears in any
	// snapshot carries only its id.
	Loaded bool

	// Draft is the unsent reply text.
	Draft string

	// ScrollAnchor identifies the message the detail view is scrolled
	// to. Empty means "follow the newest message".
	ScrollAnchor string

	// NotesPanelOpen is whether the internal notes panel is expanded.
	NotesPanelOpen bool

	// mergedAt is the issue time of the fetch last merged into Ticket.
	mergedAt time.Time
}

// MergeResult describes the effect of a list merge.
type MergeResult struct {
	// Applied is false when the snapshot was fetched before the one
	// already applied and was therefore discarded.
	Applied bool

	// Changed lists ids that are new or whose content differs from the
	// previous snapshot, in snapshot order.
	Changed []string

	// Removed lists ids present in the previous snapshot but absent
	// from this one, sorted.
	Removed []string

	// SelectionMerged is true when the snapshot contained the selected
	// ticket and it was merged into the selection.
	SelectionMerged bool
}

// Store holds the ticket list and the selection. It is not safe for
// concurrent use.
type Store struct {
	tickets      []support.Ticket
	fingerprints map[string]Fingerprint
	listMergedAt time.Time
	selection    *Selection
}

// NewStore returns an empty store with nothing selected.
func NewStore() *Store {
	return &Store{fingerprints: make(map[string]Fingerprint)}
}

// MergeList replaces the ticket list with remote, fetched by a request
// issued at fetchedAt. A snapshot older than the last applied one is
// discarded. Tickets without an id are dropped and duplicate ids keep
// their first occurrence.
//
// If the selected ticket is present its remote fields are merged into
// the selection; local-only fields are left untouched. If it is
// absent nothing happens to the selection.
func (store *Store) MergeList(remote []support.Ticket, fetchedAt time.Time) MergeResult {
	if fetchedAt.Before(store.listMergedAt) {
		return MergeResult{}
	}
	store.listMergedAt = fetchedAt

	result := MergeResult{Applied: true}
	tickets := make([]support.Ticket, 0, len(remote))
	fingerprints := make(map[string]Fingerprint, len(remote))
	for i := range remote {
		ticket := remote[i].Clone()
		if ticket.ID == "" {
			continue
		}
		if _, duplicate := fingerprints[ticket.ID]; duplicate {
			continue
		}
		fingerprint := FingerprintTicket(&ticket)
		if previous, ok := store.fingerprints[ticket.ID]; !ok || previous != fingerprint {
			result.Changed = append(result.Changed, ticket.ID)
		}
		fingerprints[ticket.ID] = fingerprint
		tickets = append(tickets, ticket)
	}
	for ticketID := range store.fingerprints {
		if _, ok := fingerprints[ticketID]; !ok {
			result.Removed = append(result.Removed, ticketID)
		}
	}
	sort.Strings(result.Removed)

	store.tickets = tickets
	store.fingerprints = fingerprints

	if store.selection != nil {
		if index := store.indexOf(store.selection.Ticket.ID); index >= 0 {
			result.SelectionMerged = store.mergeSelection(&store.tickets[index], fetchedAt)
		}
	}
	return result
}

// MergeDetail merges a single-ticket fetch into the selection. It is
// applied only when remote is the selected ticket and was fetched no
// earlier than the last merge into the selection. Returns whether the
// merge was applied.
func (store *Store) MergeDetail(remote support.Ticket, fetchedAt time.Time) bool {
	if store.selection == nil || remote.ID == "" || remote.ID != store.selection.Ticket.ID {
		return false
	}
	return store.mergeSelection(&remote, fetchedAt)
}

// mergeSelection replaces the selection's remote fields with remote.
// Read receipts are merged per role keeping the later time, so an
// optimistic local mark-read survives a response that predates it on
// the server.
func (store *Store) mergeSelection(remote *support.Ticket, fetchedAt time.Time) bool {
	selection := store.selection
	if selection.Loaded && fetchedAt.Before(selection.mergedAt) {
		return false
	}
	merged := remote.Clone()
	for role, at := range selection.Ticket.ReadReceipts {
		merged.AdvanceReceipt(role, at)
	}
	selection.Ticket = merged
	selection.Loaded = true
	selection.mergedAt = fetchedAt
	return true
}

// Select makes ticketID the selection. Selecting the current selection
// is a no-op and returns false. A new selection starts with empty
// local state and is seeded from the list row when one exists.
func (store *Store) Select(ticketID string) bool {
	if ticketID == "" {
		return store.ClearSelection()
	}
	if store.selection != nil && store.selection.Ticket.ID == ticketID {
		return false
	}
	selection := &Selection{Ticket: support.Ticket{ID: ticketID}}
	if index := store.indexOf(ticketID); index >= 0 {
		selection.Ticket = store.tickets[index].Clone()
		selection.Loaded = true
		selection.mergedAt = store.listMergedAt
	}
	store.selection = selection
	return true
}

// ClearSelection closes the detail view. Returns false if nothing was
// selected.
func (store *Store) ClearSelection() bool {
	if store.selection == nil {
		return false
	}
	store.selection = nil
	return true
}

// SelectedID returns the selected ticket id, or "" when nothing is
// selected.
func (store *Store) SelectedID() string {
	if store.selection == nil {
		return ""
	}
	return store.selection.Ticket.ID
}

// IsSelected reports whether ticketID is the selection.
func (store *Store) IsSelected(ticketID string) bool {
	return ticketID != "" && store.SelectedID() == ticketID
}

// Selection returns the live selection, or nil. Callers holding the
// session lock may modify its local-only fields.
func (store *Store) Selection() *Selection {
	return store.selection
}

// MarkSelectionRead advances actorRole's receipt on the selection to
// at, or to the newest counterpart message if that is later. Returns
// whether the receipt moved.
func (store *Store) MarkSelectionRead(actorRole support.Role, at time.Time) bool {
	if store.selection == nil {
		return false
	}
	ticket := &store.selection.Ticket
	if newest := ticket.LastMessageFrom(actorRole.Counterpart()); newest.After(at) {
		at = newest
	}
	return ticket.AdvanceReceipt(actorRole, at)
}

// SetDraft replaces the selection's draft. No-op without a selection.
func (store *Store) SetDraft(text string) {
	if store.selection != nil {
		store.selection.Draft = text
	}
}

// SetScrollAnchor records the detail view's scroll position.
func (store *Store) SetScrollAnchor(messageID string) {
	if store.selection != nil {
		store.selection.ScrollAnchor = messageID
	}
}

// SetNotesPanelOpen expands or collapses the internal notes panel.
func (store *Store) SetNotesPanelOpen(open bool) {
	if store.selection != nil {
		store.selection.NotesPanelOpen = open
	}
}

// Tickets returns a deep copy of the list. The selected row is
// replaced by the merged selection so that the list reflects local
// receipts and any detail fetch newer than the list snapshot.
func (store *Store) Tickets() []support.Ticket {
	tickets := make([]support.Ticket, len(store.tickets))
	for i := range store.tickets {
		if store.selection != nil && store.selection.Loaded && store.tickets[i].ID == store.selection.Ticket.ID {
			tickets[i] = store.selection.Ticket.Clone()
			continue
		}
		tickets[i] = store.tickets[i].Clone()
	}
	return tickets
}

// SelectionCopy returns a deep copy of the selection, or nil.
func (store *Store) SelectionCopy() *Selection {
	if store.selection == nil {
		return nil
	}
	selection := *store.selection
	selection.Ticket = store.selection.Ticket.Clone()
	return &selection
}

func (store *Store) indexOf(ticketID string) int {
	for i := range store.tickets {
		if store.tickets[i].ID == ticketID {
			return i
		}
	}
	return -1
}
