// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"context"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// Backend is the ticket service as seen by a console session. Every
// method may block on the network and must honour ctx.
type Backend interface {
	// ListTickets returns the tickets matching filters, each carrying
	// its full message list and read receipts.
	ListTickets(ctx context.Context, filters support.Filters) ([]support.Ticket, error)

	// GetTicket returns one ticket by id.
	GetTicket(ctx context.Context, ticketID string) (support.Ticket, error)

	// MarkRead records that role has read ticketID up to now.
	MarkRead(ctx context.Context, ticketID string, role support.Role) error

	// PostReply appends an administrator reply and returns the
	// updated ticket.
	PostReply(ctx context.Context, ticketID string, text string) (support.Ticket, error)
}

// Alert is raised when a ticket that is not open receives a new user
// message.
type Alert struct {
	TicketID string
	Subject  string

	// Message is the newest message at the time of the alert.
	Message support.Message
}

// Alerter delivers alerts to the operator. Implementations must not
// block: Alert is called from a polling goroutine.
type Alerter interface {
	Alert(alert Alert)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(alert Alert)

// Alert calls function(alert).
func (function AlerterFunc) Alert(alert Alert) { function(alert) }
