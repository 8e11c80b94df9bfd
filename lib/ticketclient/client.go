// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketclient implements ticketsync.Backend over the support
// desk socket protocol.
package ticketclient

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/service"
)

// Client talks to a ticket backend socket. It is safe for concurrent
// use; every call opens its own connection.
type Client struct {
	service *service.ServiceClient
}

// New returns a client for the backend listening on socketPath.
func New(socketPath string) *Client {
	return &Client{service: service.NewServiceClient(socketPath)}
}

// ListTickets returns the tickets matching filters.
func (client *Client) ListTickets(ctx context.Context, filters support.Filters) ([]support.Ticket, error) {
	fields := make(map[string]any, 3)
	if filters.Status != "" {
		fields["status"] = string(filters.Status)
	}
	if filters.Priority != "" {
		fields["priority"] = string(filters.Priority)
	}
	if filters.Search != "" {
		fields["search"] = filters.Search
	}

	var tickets []support.Ticket
	if err := client.service.Call(ctx, support.ActionListTickets, fields, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket returns one ticket.
func (client *Client) GetTicket(ctx context.Context, ticketID string) (support.Ticket, error) {
	var ticket support.Ticket
	if err := client.service.Call(ctx, support.ActionGetTicket, map[string]any{"ticket_id": ticketID}, &ticket); err != nil {
		return support.Ticket{}, err
	}
	if ticket.ID == "" {
		return support.Ticket{}, fmt.Errorf("get-ticket %s: response carried no ticket", ticketID)
	}
	return ticket, nil
}

// MarkRead records that role has read ticketID.
func (client *Client) MarkRead(ctx context.Context, ticketID string, role support.Role) error {
	return client.service.Call(ctx, support.ActionMarkRead, map[string]any{
		"ticket_id": ticketID,
		"role":      string(role),
	}, nil)
}

// PostReply appends an administrator reply and returns the updated
// ticket.
func (client *Client) PostReply(ctx context.Context, ticketID string, text string) (support.Ticket, error) {
	return client.postMessage(ctx, support.ActionPostReply, ticketID, text, "")
}

// PostUserMessage appends a message as the customer. Only development
// backends serve this action.
func (client *Client) PostUserMessage(ctx context.Context, ticketID, text, senderName string) (support.Ticket, error) {
	return client.postMessage(ctx, support.ActionPostUserMessage, ticketID, text, senderName)
}

// Status returns the backend's health summary.
func (client *Client) Status(ctx context.Context) (support.StatusResponse, error) {
	var status support.StatusResponse
	err := client.service.Call(ctx, support.ActionStatus, nil, &status)
	return status, err
}

func (client *Client) postMessage(ctx context.Context, action, ticketID, text, senderName string) (support.Ticket, error) {
	fields := map[string]any{
		"ticket_id": ticketID,
		"body":      text,
	}
	if senderName != "" {
		fields["sender_name"] = senderName
	}
	var ticket support.Ticket
	if err := client.service.Call(ctx, action, fields, &ticket); err != nil {
		return support.Ticket{}, err
	}
	if ticket.ID != ticketID {
		return support.Ticket{}, fmt.Errorf("%s %s: response carried ticket %q", action, ticketID, ticket.ID)
	}
	return ticket, nil
}
