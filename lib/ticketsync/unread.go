// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import "github.com/bureau-foundation/supportdesk/lib/schema/support"

// UnreadCount returns the number of messages on ticket that actorRole
// has not read: messages sent by the counterpart role and created after
// actorRole's read receipt. Without a receipt every counterpart message
// is unread. Malformed messages are never counted.
func UnreadCount(ticket *support.Ticket, actorRole support.Role) int {
	if ticket == nil {
		return 0
	}
	otherRole := actorRole.Counterpart()
	if otherRole == "" {
		return 0
	}

	receipt, hasReceipt := ticket.ReadReceipts[actorRole]
	count := 0
	for i := range ticket.Messages {
		message := &ticket.Messages[i]
		if message.Malformed() || message.SenderRole != otherRole {
			continue
		}
		if !hasReceipt || message.CreatedAt.After(receipt) {
			count++
		}
	}
	return count
}
