// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import "github.com/bureau-foundation/supportdesk/lib/schema/support"

// NotificationGate decides whether an observed message count is worth
// an audible alert. It remembers the last observed count per ticket.
//
// The first observation of a ticket only seeds the count: a console
// that has just started must not alert for history. A count decrease
// means a different ticket object was substituted; the gate adopts the
// lower count without alerting. A count increase alerts once,
// regardless of how many messages arrived, and only when the newest
// message is a well-formed user message and the ticket is not open.
//
// NotificationGate is not safe for concurrent use; the session
// serializes calls under its lock.
type NotificationGate struct {
	observed map[string]int
}

// NewNotificationGate returns an empty gate.
func NewNotificationGate() *NotificationGate {
	return &NotificationGate{observed: make(map[string]int)}
}

// Evaluate records messageCount for ticketID and reports whether an
// alert should be raised. isPanelOpenFor is consulted at decision time
// so that a selection change between scheduling and evaluation is
// honoured; a nil lookup is treated as "open", which suppresses the
// alert.
func (gate *NotificationGate) Evaluate(ticketID string, messageCount int, lastMessage *support.Message, isPanelOpenFor func(ticketID string) bool) bool {
	if ticketID == "" || messageCount < 0 {
		return false
	}

	previous, seeded := gate.observed[ticketID]
	gate.observed[ticketID] = messageCount
	if !seeded || messageCount <= previous {
		return false
	}

	if lastMessage == nil || lastMessage.Malformed() || lastMessage.SenderRole != support.RoleUser {
		return false
	}
	if isPanelOpenFor == nil || isPanelOpenFor(ticketID) {
		return false
	}
	return true
}

// Observed returns the last observed count for ticketID and whether
// the ticket has been seeded.
func (gate *NotificationGate) Observed(ticketID string) (int, bool) {
	count, ok := gate.observed[ticketID]
	return count, ok
}

// Forget drops ticketID so that its next observation seeds again.
func (gate *NotificationGate) Forget(ticketID string) {
	delete(gate.observed, ticketID)
}
