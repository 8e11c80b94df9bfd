// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/clock"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// Reference polling intervals.
const (
	DefaultListInterval       = 5 * time.Second
	DefaultDetailInterval     = 3 * time.Second
	DefaultFetchTimeout       = 10 * time.Second
	DefaultReadReceiptTimeout = 5 * time.Second
)

// subscriberBufferSize is the event channel capacity. A subscriber
// that falls this far behind loses events; the next event still
// prompts it to re-read the snapshot.
const subscriberBufferSize = 64

var (
	// ErrNoSelection is returned by operations that need an open
	// ticket when none is selected.
	ErrNoSelection = errors.New("no ticket selected")

	// ErrEmptyReply is returned by SendReply when the draft has no
	// visible text.
	ErrEmptyReply = errors.New("reply is empty")

	// ErrSessionStopped is returned by Start after Stop.
	ErrSessionStopped = errors.New("session stopped")
)

// Config holds the dependencies and tuning of a Session.
type Config struct {
	// Backend is the ticket service. Required.
	Backend Backend

	// Alerter receives alerts. Nil discards them; subscribers still
	// see EventAlert.
	Alerter Alerter

	// Clock drives both pollers. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// ActorRole is the role this console acts as. Defaults to
	// support.RoleAdmin.
	ActorRole support.Role

	// Polling intervals and per-request timeouts. Zero selects the
	// package default.
	ListInterval       time.Duration
	DetailInterval     time.Duration
	FetchTimeout       time.Duration
	ReadReceiptTimeout time.Duration

	// Filters is the initial list query.
	Filters support.Filters
}

// Row is one entry of the ticket list with its unread badge.
type Row struct {
	Ticket support.Ticket
	Unread int
}

// Snapshot is a deep copy of session state for rendering.
type Snapshot struct {
	Rows     []Row
	Selected *Selection
	Filters  support.Filters

	// ListError is the most recent list refresh failure, cleared by
	// the next successful refresh.
	ListError error

	// DetailError is the most recent detail refresh failure for the
	// current selection.
	DetailError error
}

type sessionState int

const (
	sessionNew sessionState = iota
	sessionRunning
	sessionStopped
)

// Session synchronizes one console with the ticket backend. Create
// with NewSession, then Start; Stop releases every goroutine.
type Session struct {
	backend            Backend
	alerter            Alerter
	clock              clock.Clock
	logger             *slog.Logger
	actorRole          support.Role
	fetchTimeout       time.Duration
	readReceiptTimeout time.Duration

	// lifecycle serializes Start, Stop, and selection changes so that
	// the detail poller follows selection changes in order.
	lifecycle sync.Mutex
	state     sessionState
	runCtx    context.Context
	cancelRun context.CancelFunc

	listPoller   *ListPoller
	detailPoller *DetailPoller
	inflight     sync.WaitGroup

	// mu guards everything below.
	mu          sync.Mutex
	store       *Store
	gate        *NotificationGate
	observedAt  map[string]time.Time
	filters     support.Filters
	listError   error
	detailError error
	subscribers []chan Event
	closed      bool
}

// NewSession validates config and returns a session that has not yet
// started polling.
func NewSession(config Config) (*Session, error) {
	if config.Backend == nil {
		return nil, errors.New("ticketsync: Backend is required")
	}
	if err := config.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("ticketsync: initial filters: %w", err)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ActorRole == "" {
		config.ActorRole = support.RoleAdmin
	}
	if !config.ActorRole.IsValid() {
		return nil, fmt.Errorf("ticketsync: unknown actor role %q", config.ActorRole)
	}
	if config.ListInterval <= 0 {
		config.ListInterval = DefaultListInterval
	}
	if config.DetailInterval <= 0 {
		config.DetailInterval = DefaultDetailInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.ReadReceiptTimeout <= 0 {
		config.ReadReceiptTimeout = DefaultReadReceiptTimeout
	}

	session := &Session{
		backend:            config.Backend,
		alerter:            config.Alerter,
		clock:              config.Clock,
		logger:             config.Logger,
		actorRole:          config.ActorRole,
		fetchTimeout:       config.FetchTimeout,
		readReceiptTimeout: config.ReadReceiptTimeout,
		store:              NewStore(),
		gate:               NewNotificationGate(),
		observedAt:         make(map[string]time.Time),
		filters:            config.Filters,
	}
	session.listPoller = &ListPoller{
		clock:    config.Clock,
		interval: config.ListInterval,
		inflight: &session.inflight,
		tick:     session.pollList,
	}
	session.detailPoller = &DetailPoller{
		clock:    config.Clock,
		interval: config.DetailInterval,
		inflight: &session.inflight,
		tick:     session.pollDetail,
	}
	return session, nil
}

// Start begins list polling, and detail polling if a ticket was
// selected before Start. Both pollers tick immediately. Start on a
// running session is a no-op.
func (session *Session) Start(ctx context.Context) error {
	session.lifecycle.Lock()
	defer session.lifecycle.Unlock()

	switch session.state {
	case sessionRunning:
		return nil
	case sessionStopped:
		return ErrSessionStopped
	}
	session.runCtx, session.cancelRun = context.WithCancel(ctx)
	session.state = sessionRunning

	session.listPoller.Start(session.runCtx)
	session.mu.Lock()
	selectedID := session.store.SelectedID()
	session.mu.Unlock()
	if selectedID != "" {
		session.detailPoller.Poll(session.runCtx, selectedID)
	}
	session.logger.Info("ticket sync started", "actor_role", session.actorRole)
	return nil
}

// Stop ends polling, cancels outstanding requests, and waits for every
// goroutine the session started. Subscriber channels are closed.
func (session *Session) Stop() {
	session.lifecycle.Lock()
	if session.state == sessionStopped {
		session.lifecycle.Unlock()
		return
	}
	wasRunning := session.state == sessionRunning
	session.state = sessionStopped
	session.listPoller.Stop()
	session.detailPoller.Idle()
	if session.cancelRun != nil {
		session.cancelRun()
	}
	session.lifecycle.Unlock()

	session.inflight.Wait()

	session.mu.Lock()
	for _, subscriber := range session.subscribers {
		close(subscriber)
	}
	session.subscribers = nil
	session.closed = true
	session.mu.Unlock()

	if wasRunning {
		session.logger.Info("ticket sync stopped")
	}
}

// Subscribe returns a channel of state-change events. The channel is
// buffered; events are dropped for a subscriber whose buffer is full.
// It is closed by Stop.
func (session *Session) Subscribe() <-chan Event {
	channel := make(chan Event, subscriberBufferSize)
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		close(channel)
		return channel
	}
	session.subscribers = append(session.subscribers, channel)
	return channel
}

// dispatchLocked sends event to every subscriber without blocking. Must be
// called with mu held.
func (session *Session) dispatchLocked(event Event) {
	for _, subscriber := range session.subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
}

// Select opens ticketID in the detail view. Selecting a different
// ticket resets local-only state, marks the ticket read locally and
// on the server, and moves the detail poller to the new ticket.
// Selecting the current ticket does nothing. An empty id clears the
// selection.
func (session *Session) Select(ticketID string) {
	if ticketID == "" {
		session.ClearSelection()
		return
	}

	session.lifecycle.Lock()
	defer session.lifecycle.Unlock()
	if session.state == sessionStopped {
		return
	}

	session.mu.Lock()
	changed := session.store.Select(ticketID)
	if changed {
		session.store.MarkSelectionRead(session.actorRole, session.clock.Now())
		session.detailError = nil
		session.dispatchLocked(Event{Kind: EventSelectionChanged, TicketID: ticketID})
	}
	session.mu.Unlock()
	if !changed {
		return
	}

	session.publishReadReceipt(ticketID)
	if session.state == sessionRunning {
		session.detailPoller.Poll(session.runCtx, ticketID)
	}
}

// ClearSelection closes the detail view and idles the detail poller.
func (session *Session) ClearSelection() {
	session.lifecycle.Lock()
	defer session.lifecycle.Unlock()

	session.mu.Lock()
	changed := session.store.ClearSelection()
	if changed {
		session.detailError = nil
		session.dispatchLocked(Event{Kind: EventSelectionChanged})
	}
	session.mu.Unlock()

	if changed {
		session.detailPoller.Idle()
	}
}

// SelectedID returns the selected ticket id, or "".
func (session *Session) SelectedID() string {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.store.SelectedID()
}

// SetFilters replaces the list query and requests an immediate list
// refresh. Responses to requests made under the previous filters are
// discarded.
func (session *Session) SetFilters(filters support.Filters) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	session.mu.Lock()
	unchanged := session.filters == filters
	session.filters = filters
	session.mu.Unlock()
	if !unchanged {
		session.listPoller.Refresh()
	}
	return nil
}

// Filters returns the active list query.
func (session *Session) Filters() support.Filters {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.filters
}

// SetDraft replaces the reply draft of the selected ticket.
func (session *Session) SetDraft(text string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.store.SetDraft(text)
}

// SetScrollAnchor records the detail view scroll position.
func (session *Session) SetScrollAnchor(messageID string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.store.SetScrollAnchor(messageID)
}

// SetNotesPanelOpen expands or collapses the notes panel.
func (session *Session) SetNotesPanelOpen(open bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.store.SetNotesPanelOpen(open)
}

// Snapshot returns a deep copy of the list, the selection, and the
// refresh status.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	tickets := session.store.Tickets()
	rows := make([]Row, len(tickets))
	for i := range tickets {
		rows[i] = Row{Ticket: tickets[i], Unread: UnreadCount(&tickets[i], session.actorRole)}
	}
	return Snapshot{
		Rows:        rows,
		Selected:    session.store.SelectionCopy(),
		Filters:     session.filters,
		ListError:   session.listError,
		DetailError: session.detailError,
	}
}

// SendReply posts the selected ticket's draft. The returned ticket is
// merged like a detail refresh, and the draft is cleared unless it was
// edited while the request was in flight.
func (session *Session) SendReply(ctx context.Context) error {
	session.mu.Lock()
	selection := session.store.Selection()
	if selection == nil {
		session.mu.Unlock()
		return ErrNoSelection
	}
	ticketID := selection.Ticket.ID
	text := selection.Draft
	session.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return ErrEmptyReply
	}

	issuedAt := session.clock.Now()
	updated, err := session.backend.PostReply(ctx, ticketID, text)
	if err != nil {
		return fmt.Errorf("posting reply to ticket %s: %w", ticketID, err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.store.IsSelected(ticketID) {
		if updated.ID == ticketID && session.store.MergeDetail(updated, issuedAt) {
			session.evaluateLocked(&updated, issuedAt)
		}
		if current := session.store.Selection(); current.Draft == text {
			current.Draft = ""
		}
		session.dispatchLocked(Event{Kind: EventDetailMerged, TicketID: ticketID})
	}
	session.logger.Info("reply posted", "ticket_id", ticketID)
	return nil
}

// publishReadReceipt tells the backend that the actor has read
// ticketID. It does not wait for the result; failures are logged and
// not retried.
func (session *Session) publishReadReceipt(ticketID string) {
	parent := session.runCtx
	if parent == nil {
		parent = context.Background()
	}
	session.inflight.Add(1)
	go func() {
		defer session.inflight.Done()
		ctx, cancel := context.WithTimeout(parent, session.readReceiptTimeout)
		defer cancel()
		if err := session.backend.MarkRead(ctx, ticketID, session.actorRole); err != nil {
			session.logger.Warn("marking ticket read failed",
				"ticket_id", ticketID,
				"error", err,
			)
		}
	}()
}

// evaluateLocked passes ticket, fetched by a request issued at
// fetchedAt, through the notification gate. A count fetched before the
// last one the gate saw for the same ticket never reaches the gate.
func (session *Session) evaluateLocked(ticket *support.Ticket, fetchedAt time.Time) bool {
	if ticket.ID == "" {
		return false
	}
	if last, ok := session.observedAt[ticket.ID]; ok && fetchedAt.Before(last) {
		session.logger.Debug("skipping gate for count older than last observation",
			"ticket_id", ticket.ID,
		)
		return false
	}
	session.observedAt[ticket.ID] = fetchedAt
	return session.gate.Evaluate(ticket.ID, len(ticket.Messages), ticket.LastMessage(), session.store.IsSelected)
}

// deliver hands alerts to the alerter. Called without mu held.
func (session *Session) deliver(alerts []Alert) {
	for _, alert := range alerts {
		session.logger.Info("new message alert",
			"ticket_id", alert.TicketID,
			"sender", alert.Message.SenderName,
		)
		if session.alerter != nil {
			session.alerter.Alert(alert)
		}
	}
}
