// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketbackend

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/supportdesk/lib/clock"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

var (
	// ErrTicketNotFound is returned for an unknown ticket id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketClosed is returned when posting to a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")

	// ErrEmptyMessage is returned when a post has no visible text.
	ErrEmptyMessage = errors.New("message body is empty")
)

// Default sender names when a post does not carry one.
const (
	DefaultAdminName = "Support"
	DefaultUserName  = "Customer"
)

// Desk is an in-memory ticket store. It is safe for concurrent use.
type Desk struct {
	clock  clock.Clock
	logger *slog.Logger

	// newID generates message ids.
	newID func() string

	mu      sync.RWMutex
	tickets map[string]*support.Ticket
}

// New returns an empty desk.
func New(timeSource clock.Clock, logger *slog.Logger) *Desk {
	return &Desk{
		clock:   timeSource,
		logger:  logger,
		newID:   uuid.NewString,
		tickets: make(map[string]*support.Ticket),
	}
}

// Load adds tickets to the desk, replacing any with the same id.
// Every ticket is validated before any is stored.
func (desk *Desk) Load(tickets []support.Ticket) error {
	for i := range tickets {
		if err := tickets[i].Validate(); err != nil {
			return fmt.Errorf("seed ticket %d: %w", i, err)
		}
	}

	desk.mu.Lock()
	defer desk.mu.Unlock()
	now := desk.clock.Now()
	for i := range tickets {
		ticket := tickets[i].Clone()
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = now
		}
		if ticket.UpdatedAt.IsZero() {
			ticket.UpdatedAt = ticket.CreatedAt
		}
		desk.tickets[ticket.ID] = &ticket
	}
	return nil
}

// Len returns the number of tickets.
func (desk *Desk) Len() int {
	desk.mu.RLock()
	defer desk.mu.RUnlock()
	return len(desk.tickets)
}

// List returns copies of the tickets matching filters, most recently
// updated first. Ties are broken by id.
func (desk *Desk) List(filters support.Filters) []support.Ticket {
	desk.mu.RLock()
	defer desk.mu.RUnlock()

	var search *fuzzySearch
	if query := strings.TrimSpace(filters.Search); query != "" {
		search = newFuzzySearch(query)
	}

	result := make([]support.Ticket, 0, len(desk.tickets))
	for _, ticket := range desk.tickets {
		if !filters.MatchesFields(ticket) {
			continue
		}
		if search != nil && !search.matches(ticket) {
			continue
		}
		result = append(result, ticket.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Get returns a copy of one ticket.
func (desk *Desk) Get(ticketID string) (support.Ticket, error) {
	desk.mu.RLock()
	defer desk.mu.RUnlock()
	ticket, ok := desk.tickets[ticketID]
	if !ok {
		return support.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	return ticket.Clone(), nil
}

// MarkRead advances role's read receipt on ticketID to now.
func (desk *Desk) MarkRead(ticketID string, role support.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("mark-read: unknown role %q", role)
	}
	desk.mu.Lock()
	defer desk.mu.Unlock()
	ticket, ok := desk.tickets[ticketID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	ticket.AdvanceReceipt(role, desk.clock.Now())
	return nil
}

// PostReply appends an administrator message.
func (desk *Desk) PostReply(ticketID, body, senderName string) (support.Ticket, error) {
	return desk.post(ticketID, support.RoleAdmin, body, senderName)
}

// PostUserMessage appends a customer message.
func (desk *Desk) PostUserMessage(ticketID, body, senderName string) (support.Ticket, error) {
	return desk.post(ticketID, support.RoleUser, body, senderName)
}

// post appends a message from role. The sender has read everything up
// to their own message, so their receipt advances with it. An
// administrator reply to an open ticket moves it to in progress.
func (desk *Desk) post(ticketID string, role support.Role, body, senderName string) (support.Ticket, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return support.Ticket{}, ErrEmptyMessage
	}
	if senderName == "" {
		senderName = DefaultUserName
		if role == support.RoleAdmin {
			senderName = DefaultAdminName
		}
	}

	desk.mu.Lock()
	defer desk.mu.Unlock()
	ticket, ok := desk.tickets[ticketID]
	if !ok {
		return support.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	if ticket.Status == support.StatusClosed {
		return support.Ticket{}, fmt.Errorf("%w: %s", ErrTicketClosed, ticketID)
	}

	now := desk.clock.Now()
	ticket.Messages = append(ticket.Messages, support.Message{
		ID:         desk.newID(),
		SenderRole: role,
		SenderName: senderName,
		Body:       body,
		CreatedAt:  now,
	})
	ticket.AdvanceReceipt(role, now)
	ticket.UpdatedAt = now
	if role == support.RoleAdmin && ticket.Status == support.StatusOpen {
		ticket.Status = support.StatusInProgress
	}

	desk.logger.Debug("message posted",
		"ticket_id", ticketID,
		"sender_role", role,
		"messages", len(ticket.Messages),
	)
	return ticket.Clone(), nil
}
