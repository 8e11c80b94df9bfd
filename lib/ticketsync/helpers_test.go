// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

func userMessage(id string, seconds int) support.Message {
	return support.Message{
		ID:         id,
		SenderRole: support.RoleUser,
		SenderName: "Dana Customer",
		Body:       "message " + id,
		CreatedAt:  at(seconds),
	}
}

func adminMessage(id string, seconds int) support.Message {
	return support.Message{
		ID:         id,
		SenderRole: support.RoleAdmin,
		SenderName: "Avery Agent",
		Body:       "reply " + id,
		CreatedAt:  at(seconds),
	}
}

// ticketWithUserMessages returns an open ticket carrying count user
// messages one second apart.
func ticketWithUserMessages(ticketID string, count int) support.Ticket {
	ticket := support.Ticket{
		ID:        ticketID,
		Subject:   "Subject of " + ticketID,
		Status:    support.StatusOpen,
		Priority:  support.PriorityMedium,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
	for i := range count {
		ticket.Messages = append(ticket.Messages, userMessage(fmt.Sprintf("%s-m%d", ticketID, i+1), i+1))
	}
	return ticket
}
