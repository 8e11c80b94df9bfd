// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package support

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority is the urgency of a ticket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Role identifies which side of the conversation an actor is on.
type Role string

const (
	// RoleUser is the customer who opened the ticket.
	RoleUser Role = "user"

	// RoleAdmin is a support administrator working the ticket.
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Counterpart returns the opposite role: admin for user and user for
// admin. Unknown roles have no counterpart and return "".
func (r Role) Counterpart() Role {
	switch r {
	case RoleUser:
		return RoleAdmin
	case RoleAdmin:
		return RoleUser
	}
	return ""
}

// Message is one entry in a ticket's conversation thread. Messages
// are immutable once created.
type Message struct {
	ID         string    `json:"id"`
	SenderRole Role      `json:"sender_role"`
	SenderName string    `json:"sender_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Malformed reports whether the message is missing a field that
// unread and notification computation depend on: a known sender role
// and a creation timestamp. Malformed messages are still displayed
// but never counted and never alert.
func (m *Message) Malformed() bool {
	return !m.SenderRole.IsValid() || m.CreatedAt.IsZero()
}

// InternalNote is an administrator-only annotation on a ticket. Notes
// are never shown to the customer and never count as unread.
type InternalNote struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReadReceipts maps a role to the last time an actor of that role
// read the ticket's messages. A missing entry means never read.
type ReadReceipts map[Role]time.Time

// Ticket is a support request with its full conversation history.
type Ticket struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// Assignee is the administrator working the ticket. Empty when
	// unassigned.
	Assignee string `json:"assignee,omitempty"`

	// Messages is the conversation thread in creation order. The
	// server only ever appends to it.
	Messages []Message `json:"messages,omitempty"`

	Notes        []InternalNote `json:"notes,omitempty"`
	ReadReceipts ReadReceipts   `json:"read_receipts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields every ticket must carry. Messages are not
// validated: a malformed message is tolerated and excluded from
// computation rather than rejecting the whole ticket.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return errors.New("ticket: id is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("ticket %s: unknown status %q", t.ID, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("ticket %s: unknown priority %q", t.ID, t.Priority)
	}
	return nil
}

// LastMessage returns the most recent message, or nil when the thread
// is empty.
func (t *Ticket) LastMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}

// LastMessageFrom returns the creation time of the most recent
// well-formed message sent by role, or the zero time if there is none.
func (t *Ticket) LastMessageFrom(role Role) time.Time {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		message := &t.Messages[i]
		if message.Malformed() || message.SenderRole != role {
			continue
		}
		return message.CreatedAt
	}
	return time.Time{}
}

// AdvanceReceipt records that role read the ticket at the given time.
// Receipts only move forward: an earlier time than the one already
// recorded is ignored. Returns true if the receipt changed.
func (t *Ticket) AdvanceReceipt(role Role, at time.Time) bool {
	if at.IsZero() {
		return false
	}
	if existing, ok := t.ReadReceipts[role]; ok && !at.After(existing) {
		return false
	}
	if t.ReadReceipts == nil {
		t.ReadReceipts = make(ReadReceipts)
	}
	t.ReadReceipts[role] = at
	return true
}

// Clone returns a deep copy of the ticket. The copy shares no slices
// or maps with the original.
func (t *Ticket) Clone() Ticket {
	clone := *t
	if t.Messages != nil {
		clone.Messages = append([]Message(nil), t.Messages...)
	}
	if t.Notes != nil {
		clone.Notes = append([]InternalNote(nil), t.Notes...)
	}
	if t.ReadReceipts != nil {
		clone.ReadReceipts = make(ReadReceipts, len(t.ReadReceipts))
		for role, at := range t.ReadReceipts {
			clone.ReadReceipts[role] = at
		}
	}
	return clone
}

// Filters is the list query used by the console. Empty fields match
// every ticket.
type Filters struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`

	// Search is free text matched against subject, description, and
	// message bodies. Matching is up to the backend.
	Search string `json:"search,omitempty"`
}

// MatchesFields reports whether the ticket satisfies the status and
// priority filters. Search is not considered.
func (f Filters) MatchesFields(t *Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Validate rejects filters naming unknown statuses or priorities.
func (f Filters) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return fmt.Errorf("filters: unknown status %q", f.Status)
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return fmt.Errorf("filters: unknown priority %q", f.Priority)
	}
	return nil
}
