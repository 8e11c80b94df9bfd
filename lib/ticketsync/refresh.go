// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"context"
	"time"
)

// pollList is the list poller's tick. Filters and selection are read
// live: filters when the request is built, selection when each ticket
// passes through the gate.
func (session *Session) pollList(ctx context.Context, issuedAt time.Time) {
	session.mu.Lock()
	filters := session.filters
	session.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, session.fetchTimeout)
	tickets, err := session.backend.ListTickets(fetchCtx, filters)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		session.logger.Warn("ticket list refresh failed", "error", err)
		session.mu.Lock()
		session.listError = err
		session.dispatchLocked(Event{Kind: EventFetchFailed, Err: err})
		session.mu.Unlock()
		return
	}

	session.mu.Lock()
	if session.filters != filters {
		session.dispatchLocked(Event{Kind: EventStaleDiscarded})
		session.mu.Unlock()
		session.logger.Debug("discarding ticket list fetched for previous filters")
		return
	}
	result := session.store.MergeList(tickets, issuedAt)
	if !result.Applied {
		session.dispatchLocked(Event{Kind: EventStaleDiscarded})
		session.mu.Unlock()
		session.logger.Debug("discarding ticket list older than current snapshot")
		return
	}
	session.listError = nil

	// Duplicate ids keep their first row, matching MergeList.
	var alerts []Alert
	evaluated := make(map[string]bool, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		if evaluated[ticket.ID] {
			continue
		}
		evaluated[ticket.ID] = true
		if session.evaluateLocked(ticket, issuedAt) {
			alerts = append(alerts, Alert{TicketID: ticket.ID, Subject: ticket.Subject, Message: *ticket.LastMessage()})
		}
	}

	session.dispatchLocked(Event{Kind: EventListMerged, Changed: result.Changed, Removed: result.Removed})
	for _, alert := range alerts {
		session.dispatchLocked(Event{Kind: EventAlert, TicketID: alert.TicketID})
	}
	session.mu.Unlock()

	session.deliver(alerts)
}

// pollDetail is the detail poller's tick for ticketID. The response is
// applied only if ticketID is still selected when it arrives.
func (session *Session) pollDetail(ctx context.Context, ticketID string, issuedAt time.Time) {
	fetchCtx, cancel := context.WithTimeout(ctx, session.fetchTimeout)
	ticket, err := session.backend.GetTicket(fetchCtx, ticketID)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			session.logger.Debug("detail fetch abandoned", "ticket_id", ticketID)
			return
		}
		session.logger.Warn("ticket refresh failed",
			"ticket_id", ticketID,
			"error", err,
		)
		session.mu.Lock()
		if session.store.IsSelected(ticketID) {
			session.detailError = err
		}
		session.dispatchLocked(Event{Kind: EventFetchFailed, TicketID: ticketID, Err: err})
		session.mu.Unlock()
		return
	}

	session.mu.Lock()
	if ticket.ID != ticketID || !session.store.IsSelected(ticketID) || !session.store.MergeDetail(ticket, issuedAt) {
		session.dispatchLocked(Event{Kind: EventStaleDiscarded, TicketID: ticket.ID})
		session.mu.Unlock()
		session.logger.Debug("discarding stale ticket detail",
			"ticket_id", ticket.ID,
			"requested", ticketID,
		)
		return
	}
	session.detailError = nil

	// The ticket is open, so the gate only advances its count here.
	session.evaluateLocked(&ticket, issuedAt)
	session.dispatchLocked(Event{Kind: EventDetailMerged, TicketID: ticketID})
	session.mu.Unlock()
}
