// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package support

// Socket protocol actions served by the ticket backend.
const (
	ActionStatus          = "status"
	ActionListTickets     = "list-tickets"
	ActionGetTicket       = "get-ticket"
	ActionMarkRead        = "mark-read"
	ActionPostReply       = "post-reply"
	ActionPostUserMessage = "post-user-message"
)

// Request bodies. The "action" field is added by the socket client and
// routed by the server; it is not part of these types. Responses use
// Ticket and []Ticket directly.

// ListTicketsRequest carries the list filters. Empty fields match
// every ticket.
type ListTicketsRequest struct {
	Status   Status   `cbor:"status,omitempty"`
	Priority Priority `cbor:"priority,omitempty"`
	Search   string   `cbor:"search,omitempty"`
}

// Filters returns the request as list filters.
func (request ListTicketsRequest) Filters() Filters {
	return Filters{Status: request.Status, Priority: request.Priority, Search: request.Search}
}

// TicketRequest identifies one ticket.
type TicketRequest struct {
	TicketID string `cbor:"ticket_id"`
}

// MarkReadRequest records that Role has read TicketID.
type MarkReadRequest struct {
	TicketID string `cbor:"ticket_id"`
	Role     Role   `cbor:"role"`
}

// PostMessageRequest appends a message to TicketID. SenderName is
// optional; the backend substitutes a default per role.
type PostMessageRequest struct {
	TicketID   string `cbor:"ticket_id"`
	Body       string `cbor:"body"`
	SenderName string `cbor:"sender_name,omitempty"`
}

// StatusResponse is the backend's health summary.
type StatusResponse struct {
	Tickets  int   `cbor:"tickets"`
	UptimeMS int64 `cbor:"uptime_ms"`
}
