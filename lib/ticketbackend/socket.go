// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketbackend

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/codec"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/service"
)

// Register adds the desk's actions to server. startedAt anchors the
// uptime reported by the status action.
func (desk *Desk) Register(server *service.SocketServer, startedAt time.Time) {
	server.Handle(support.ActionStatus, func(ctx context.Context, raw []byte) (any, error) {
		return support.StatusResponse{
			Tickets:  desk.Len(),
			UptimeMS: desk.clock.Now().Sub(startedAt).Milliseconds(),
		}, nil
	})
	server.Handle(support.ActionListTickets, desk.handleListTickets)
	server.Handle(support.ActionGetTicket, desk.handleGetTicket)
	server.Handle(support.ActionMarkRead, desk.handleMarkRead)
	server.Handle(support.ActionPostReply, desk.handlePostReply)
	server.Handle(support.ActionPostUserMessage, desk.handlePostUserMessage)
}

func (desk *Desk) handleListTickets(_ context.Context, raw []byte) (any, error) {
	var request support.ListTicketsRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	filters := request.Filters()
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return desk.List(filters), nil
}

func (desk *Desk) handleGetTicket(_ context.Context, raw []byte) (any, error) {
	var request support.TicketRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if request.TicketID == "" {
		return nil, fmt.Errorf("missing required field: ticket_id")
	}
	return desk.Get(request.TicketID)
}

func (desk *Desk) handleMarkRead(_ context.Context, raw []byte) (any, error) {
	var request support.MarkReadRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if request.TicketID == "" {
		return nil, fmt.Errorf("missing required field: ticket_id")
	}
	return nil, desk.MarkRead(request.TicketID, request.Role)
}

func (desk *Desk) handlePostReply(_ context.Context, raw []byte) (any, error) {
	request, err := decodePostMessage(raw)
	if err != nil {
		return nil, err
	}
	return desk.PostReply(request.TicketID, request.Body, request.SenderName)
}

func (desk *Desk) handlePostUserMessage(_ context.Context, raw []byte) (any, error) {
	request, err := decodePostMessage(raw)
	if err != nil {
		return nil, err
	}
	return desk.PostUserMessage(request.TicketID, request.Body, request.SenderName)
}

func decodePostMessage(raw []byte) (support.PostMessageRequest, error) {
	var request support.PostMessageRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("invalid request: %w", err)
	}
	if request.TicketID == "" {
		return request, fmt.Errorf("missing required field: ticket_id")
	}
	return request, nil
}
