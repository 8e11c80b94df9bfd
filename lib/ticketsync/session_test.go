// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/clock"
	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/testutil"
)

const testTimeout = 5 * time.Second

// fakeBackend serves tickets from memory. getGate, when set for a
// ticket id, blocks GetTicket for that id until the channel is closed,
// regardless of context cancellation, simulating a response already on
// the wire.
type fakeBackend struct {
	mu       sync.Mutex
	tickets  []support.Ticket
	listErr  error
	getGate  map[string]chan struct{}
	markRead chan string
	replies  []string
}

func newFakeBackend(tickets ...support.Ticket) *fakeBackend {
	return &fakeBackend{
		tickets:  tickets,
		getGate:  make(map[string]chan struct{}),
		markRead: make(chan string, 16),
	}
}

func (backend *fakeBackend) setTickets(tickets ...support.Ticket) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.tickets = tickets
}

func (backend *fakeBackend) setListError(err error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.listErr = err
}

func (backend *fakeBackend) holdGet(ticketID string) chan struct{} {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	release := make(chan struct{})
	backend.getGate[ticketID] = release
	return release
}

func (backend *fakeBackend) ListTickets(ctx context.Context, filters support.Filters) ([]support.Ticket, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.listErr != nil {
		return nil, backend.listErr
	}
	var result []support.Ticket
	for i := range backend.tickets {
		if filters.MatchesFields(&backend.tickets[i]) {
			result = append(result, backend.tickets[i].Clone())
		}
	}
	return result, nil
}

func (backend *fakeBackend) GetTicket(ctx context.Context, ticketID string) (support.Ticket, error) {
	backend.mu.Lock()
	release := backend.getGate[ticketID]
	delete(backend.getGate, ticketID)
	backend.mu.Unlock()
	if release != nil {
		<-release
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	for i := range backend.tickets {
		if backend.tickets[i].ID == ticketID {
			return backend.tickets[i].Clone(), nil
		}
	}
	return support.Ticket{}, errors.New("ticket not found")
}

func (backend *fakeBackend) MarkRead(ctx context.Context, ticketID string, role support.Role) error {
	backend.markRead <- ticketID
	return nil
}

func (backend *fakeBackend) PostReply(ctx context.Context, ticketID string, text string) (support.Ticket, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	for i := range backend.tickets {
		if backend.tickets[i].ID == ticketID {
			backend.replies = append(backend.replies, text)
			backend.tickets[i].Messages = append(backend.tickets[i].Messages, support.Message{
				ID:         fmt.Sprintf("reply-%d", len(backend.replies)),
				SenderRole: support.RoleAdmin,
				SenderName: "Avery Agent",
				Body:       text,
				CreatedAt:  at(100 + len(backend.replies)),
			})
			return backend.tickets[i].Clone(), nil
		}
	}
	return support.Ticket{}, errors.New("ticket not found")
}

type sessionHarness struct {
	t       *testing.T
	clock   *clock.FakeClock
	backend *fakeBackend
	session *Session
	events  <-chan Event
	alerts  chan Alert
}

func newHarness(t *testing.T, backend *fakeBackend) *sessionHarness {
	t.Helper()
	harness := &sessionHarness{
		t:       t,
		clock:   clock.Fake(epoch),
		backend: backend,
		alerts:  make(chan Alert, 16),
	}
	session, err := NewSession(Config{
		Backend: backend,
		Alerter: AlerterFunc(func(alert Alert) { harness.alerts <- alert }),
		Clock:   harness.clock,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	harness.session = session
	harness.events = session.Subscribe()
	t.Cleanup(session.Stop)
	return harness
}

// start starts the session and waits for the immediate list tick.
func (harness *sessionHarness) start() {
	harness.t.Helper()
	if err := harness.session.Start(context.Background()); err != nil {
		harness.t.Fatalf("Start: %v", err)
	}
	harness.waitFor(EventListMerged)
}

// waitFor reads events until one of kind arrives and returns it.
func (harness *sessionHarness) waitFor(kind EventKind) Event {
	harness.t.Helper()
	return testutil.RequireReceiveMatching(harness.t, harness.events, testTimeout,
		func(event Event) bool { return event.Kind == kind },
		"waiting for %s event", kind)
}

// listTick advances the clock one list interval and waits for the
// resulting merge.
func (harness *sessionHarness) listTick() Event {
	harness.t.Helper()
	harness.clock.Advance(DefaultListInterval)
	return harness.waitFor(EventListMerged)
}

func (harness *sessionHarness) requireNoAlert() {
	harness.t.Helper()
	select {
	case alert := <-harness.alerts:
		harness.t.Fatalf("unexpected alert for %s", alert.TicketID)
	default:
	}
}

func TestSessionAlertScenario(t *testing.T) {
	ticket := ticketWithUserMessages("T", 2)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()
	harness.requireNoAlert()

	ticket.Messages = append(ticket.Messages, userMessage("T-m3", 30))
	harness.backend.setTickets(ticket)
	harness.listTick()
	alert := testutil.RequireReceive(t, harness.alerts, testTimeout, "alert for T")
	if alert.TicketID != "T" || alert.Message.ID != "T-m3" || alert.Subject != ticket.Subject {
		t.Fatalf("alert = %+v, want ticket T message T-m3", alert)
	}

	harness.listTick()
	harness.requireNoAlert()
}

func TestSessionNewTicketWithHistory(t *testing.T) {
	harness := newHarness(t, newFakeBackend())
	harness.start()

	harness.backend.setTickets(ticketWithUserMessages("fresh", 5))
	event := harness.listTick()
	if len(event.Changed) != 1 || event.Changed[0] != "fresh" {
		t.Fatalf("Changed = %v, want [fresh]", event.Changed)
	}
	harness.requireNoAlert()

	rows := harness.session.Snapshot().Rows
	if len(rows) != 1 || rows[0].Unread != 5 {
		t.Fatalf("rows = %+v, want one row with 5 unread", rows)
	}
}

func TestSessionAdminMessageNeverAlerts(t *testing.T) {
	ticket := ticketWithUserMessages("T", 1)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()

	for i := range 3 {
		ticket.Messages = append(ticket.Messages, adminMessage(fmt.Sprintf("admin-%d", i), 10+i))
		harness.backend.setTickets(ticket)
		harness.listTick()
	}
	harness.requireNoAlert()
}

func TestSessionBurstAlertsOnce(t *testing.T) {
	ticket := ticketWithUserMessages("T", 1)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()

	for i := range 5 {
		ticket.Messages = append(ticket.Messages, userMessage(fmt.Sprintf("burst-%d", i), 10+i))
	}
	harness.backend.setTickets(ticket)
	harness.listTick()
	testutil.RequireReceive(t, harness.alerts, testTimeout, "burst alert")
	harness.listTick()
	harness.requireNoAlert()
}

func TestSessionOpenTicketDoesNotAlert(t *testing.T) {
	open := ticketWithUserMessages("open", 1)
	other := ticketWithUserMessages("other", 1)
	harness := newHarness(t, newFakeBackend(open, other))
	harness.start()

	harness.session.Select("open")
	harness.waitFor(EventDetailMerged)

	open.Messages = append(open.Messages, userMessage("open-new", 20))
	other.Messages = append(other.Messages, userMessage("other-new", 20))
	harness.backend.setTickets(open, other)
	harness.listTick()

	alert := testutil.RequireReceive(t, harness.alerts, testTimeout, "alert for other")
	if alert.TicketID != "other" {
		t.Fatalf("alert for %s, want other", alert.TicketID)
	}
	harness.requireNoAlert()
}

func TestSessionDiscardsDetailForPreviousSelection(t *testing.T) {
	ticketA := ticketWithUserMessages("A", 1)
	ticketB := ticketWithUserMessages("B", 2)
	harness := newHarness(t, newFakeBackend(ticketA, ticketB))
	harness.start()

	release := harness.backend.holdGet("A")
	harness.session.Select("A")
	harness.session.Select("B")
	merged := harness.waitFor(EventDetailMerged)
	if merged.TicketID != "B" {
		t.Fatalf("detail merged for %s, want B", merged.TicketID)
	}
	harness.session.SetDraft("reply to B")

	close(release)
	stale := harness.waitFor(EventStaleDiscarded)
	if stale.TicketID != "A" {
		t.Fatalf("discarded %s, want A", stale.TicketID)
	}

	selected := harness.session.Snapshot().Selected
	if selected.Ticket.ID != "B" || selected.Draft != "reply to B" || len(selected.Ticket.Messages) != 2 {
		t.Fatalf("selection after stale response = %+v", selected)
	}
}

func TestSessionSingleDetailSchedule(t *testing.T) {
	harness := newHarness(t, newFakeBackend(ticketWithUserMessages("A", 1), ticketWithUserMessages("B", 1)))
	harness.start()
	if got := harness.clock.PendingCount(); got != 1 {
		t.Fatalf("pending timers = %d, want 1 (list)", got)
	}

	harness.session.Select("A")
	harness.session.Select("B")
	harness.session.Select("A")
	if got := harness.clock.PendingCount(); got != 2 {
		t.Fatalf("pending timers = %d, want 2 (list + one detail)", got)
	}

	harness.session.ClearSelection()
	if got := harness.clock.PendingCount(); got != 1 {
		t.Fatalf("pending timers after clear = %d, want 1", got)
	}
}

func TestSessionDetailPollsOnInterval(t *testing.T) {
	ticket := ticketWithUserMessages("A", 1)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()
	harness.session.Select("A")
	harness.waitFor(EventDetailMerged)

	ticket.Messages = append(ticket.Messages, userMessage("A-new", 20))
	harness.backend.setTickets(ticket)
	harness.clock.Advance(DefaultDetailInterval)
	harness.waitFor(EventDetailMerged)

	selected := harness.session.Snapshot().Selected
	if len(selected.Ticket.Messages) != 2 {
		t.Fatalf("selection has %d messages, want 2", len(selected.Ticket.Messages))
	}
	harness.requireNoAlert()
}

func TestSessionReadReceiptOncePerSelection(t *testing.T) {
	harness := newHarness(t, newFakeBackend(ticketWithUserMessages("A", 3), ticketWithUserMessages("B", 1)))
	harness.start()

	harness.session.Select("A")
	harness.session.Select("A")
	harness.session.Select("B")
	harness.session.Select("A")

	// Receipts are published concurrently, so only the counts are
	// ordered.
	counts := make(map[string]int)
	for range 3 {
		counts[testutil.RequireReceive(t, harness.backend.markRead, testTimeout, "mark-read")]++
	}
	if counts["A"] != 2 || counts["B"] != 1 {
		t.Fatalf("mark-read counts = %v, want A:2 B:1", counts)
	}
	harness.session.Stop()
	select {
	case extra := <-harness.backend.markRead:
		t.Fatalf("extra mark-read for %s", extra)
	default:
	}
}

func TestSessionSelectClearsUnreadBadge(t *testing.T) {
	harness := newHarness(t, newFakeBackend(ticketWithUserMessages("A", 3)))
	harness.start()
	if got := harness.session.Snapshot().Rows[0].Unread; got != 3 {
		t.Fatalf("unread before select = %d, want 3", got)
	}

	harness.session.Select("A")
	if got := harness.session.Snapshot().Rows[0].Unread; got != 0 {
		t.Fatalf("unread after select = %d, want 0", got)
	}

	// A list tick whose server receipt predates the mark-read must not
	// bring the badge back.
	harness.listTick()
	if got := harness.session.Snapshot().Rows[0].Unread; got != 0 {
		t.Fatalf("unread after list tick = %d, want 0", got)
	}
}

func TestSessionListFailureKeepsPolling(t *testing.T) {
	ticket := ticketWithUserMessages("T", 1)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()

	harness.backend.setListError(errors.New("connection refused"))
	harness.clock.Advance(DefaultListInterval)
	failed := harness.waitFor(EventFetchFailed)
	if failed.Err == nil {
		t.Fatal("fetch failure event without an error")
	}
	if harness.session.Snapshot().ListError == nil {
		t.Fatal("snapshot does not report the list error")
	}
	if rows := harness.session.Snapshot().Rows; len(rows) != 1 {
		t.Fatalf("failed refresh dropped the list: %d rows", len(rows))
	}

	harness.backend.setListError(nil)
	ticket.Messages = append(ticket.Messages, userMessage("T-new", 20))
	harness.backend.setTickets(ticket)
	harness.listTick()
	testutil.RequireReceive(t, harness.alerts, testTimeout, "alert after recovery")
	if harness.session.Snapshot().ListError != nil {
		t.Fatal("list error not cleared after recovery")
	}
}

func TestSessionSetFiltersRefreshesImmediately(t *testing.T) {
	high := ticketWithUserMessages("high", 1)
	high.Priority = support.PriorityHigh
	low := ticketWithUserMessages("low", 1)
	low.Priority = support.PriorityLow
	harness := newHarness(t, newFakeBackend(high, low))
	harness.start()

	if err := harness.session.SetFilters(support.Filters{Priority: support.PriorityHigh}); err != nil {
		t.Fatalf("SetFilters: %v", err)
	}
	event := harness.waitFor(EventListMerged)
	if len(event.Removed) != 1 || event.Removed[0] != "low" {
		t.Fatalf("Removed = %v, want [low]", event.Removed)
	}
	if rows := harness.session.Snapshot().Rows; len(rows) != 1 || rows[0].Ticket.ID != "high" {
		t.Fatalf("rows = %+v, want only high", rows)
	}

	if err := harness.session.SetFilters(support.Filters{Status: "archived"}); err == nil {
		t.Fatal("SetFilters accepted an unknown status")
	}
}

func TestSessionSendReply(t *testing.T) {
	ticket := ticketWithUserMessages("A", 1)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()

	if err := harness.session.SendReply(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("SendReply without selection: got %v, want ErrNoSelection", err)
	}

	harness.session.Select("A")
	harness.waitFor(EventDetailMerged)
	harness.session.SetDraft("   ")
	if err := harness.session.SendReply(context.Background()); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("SendReply with blank draft: got %v, want ErrEmptyReply", err)
	}

	harness.session.SetDraft("We are looking into it.")
	if err := harness.session.SendReply(context.Background()); err != nil {
		t.Fatalf("SendReply: %v", err)
	}
	selected := harness.session.Snapshot().Selected
	if selected.Draft != "" {
		t.Errorf("draft = %q after send, want empty", selected.Draft)
	}
	last := selected.Ticket.LastMessage()
	if last == nil || last.Body != "We are looking into it." || last.SenderRole != support.RoleAdmin {
		t.Fatalf("last message = %+v, want the posted reply", last)
	}

	harness.listTick()
	harness.requireNoAlert()
}

func TestSessionStopReleasesTimers(t *testing.T) {
	harness := newHarness(t, newFakeBackend(ticketWithUserMessages("A", 1)))
	harness.start()
	harness.session.Select("A")

	harness.session.Stop()
	if got := harness.clock.PendingCount(); got != 0 {
		t.Fatalf("pending timers after Stop = %d, want 0", got)
	}
	for range harness.events {
	}
	if err := harness.session.Start(context.Background()); !errors.Is(err, ErrSessionStopped) {
		t.Fatalf("Start after Stop: got %v, want ErrSessionStopped", err)
	}
}

func TestSessionSelectBeforeStart(t *testing.T) {
	harness := newHarness(t, newFakeBackend(ticketWithUserMessages("A", 2)))
	harness.session.Select("A")
	testutil.RequireReceive(t, harness.backend.markRead, testTimeout, "mark-read before start")

	if err := harness.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	harness.waitFor(EventDetailMerged)
	if got := harness.clock.PendingCount(); got != 2 {
		t.Fatalf("pending timers = %d, want 2", got)
	}
}

func TestNewSessionValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "missing backend", config: Config{}},
		{name: "bad filters", config: Config{Backend: newFakeBackend(), Filters: support.Filters{Priority: "whenever"}}},
		{name: "bad role", config: Config{Backend: newFakeBackend(), ActorRole: "robot"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewSession(test.config); err == nil {
				t.Fatal("NewSession succeeded")
			}
		})
	}
}

func TestSessionLateListResponseDoesNotReachGate(t *testing.T) {
	stale := ticketWithUserMessages("T", 2)
	fresh := stale.Clone()
	fresh.Messages = append(fresh.Messages, userMessage("T-m3", 30))
	backend := newFakeBackend(stale)
	harness := newHarness(t, backend)
	session := harness.session
	ctx := context.Background()

	session.pollList(ctx, at(0))
	session.Select("T")
	testutil.RequireReceive(t, backend.markRead, testTimeout, "read receipt for T")

	// The detail fetch issued at 2s sees the new message while T is open.
	backend.setTickets(fresh)
	session.pollDetail(ctx, "T", at(2))

	// A list fetch issued at 1s arrives afterwards with the old count.
	backend.setTickets(stale)
	session.pollList(ctx, at(1))
	session.mu.Lock()
	observed, _ := session.gate.Observed("T")
	session.mu.Unlock()
	if observed != 3 {
		t.Fatalf("gate count after late list response: got %d, want 3", observed)
	}

	session.ClearSelection()
	backend.setTickets(fresh)
	session.pollList(ctx, at(10))
	harness.requireNoAlert()
}

func TestSessionDuplicateListRowsEvaluatedOnce(t *testing.T) {
	ticket := ticketWithUserMessages("T", 2)
	harness := newHarness(t, newFakeBackend(ticket))
	harness.start()

	grown := ticket.Clone()
	grown.Messages = append(grown.Messages, userMessage("T-m3", 30))
	harness.backend.setTickets(grown, ticket)
	harness.listTick()
	alert := testutil.RequireReceive(t, harness.alerts, testTimeout, "alert for T")
	if alert.Message.ID != "T-m3" {
		t.Fatalf("alert message = %s, want T-m3", alert.Message.ID)
	}

	harness.listTick()
	harness.requireNoAlert()
}
