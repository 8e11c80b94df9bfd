// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"context"
	"sync"
	"time"

	"github.com/bureau-foundation/supportdesk/lib/clock"
)

// tickFunc performs one polling tick. issuedAt is the clock time when
// the tick was launched; merges use it to order responses.
type tickFunc func(ctx context.Context, issuedAt time.Time)

// schedule runs a tickFunc immediately and then on every tick of a
// clock ticker until stopped. Each tick runs on its own goroutine so a
// fetch that hangs past the interval does not delay the next tick.
type schedule struct {
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

// startSchedule creates the ticker before returning, so a test can
// advance a fake clock as soon as the call completes.
func startSchedule(ctx context.Context, timeSource clock.Clock, interval time.Duration, inflight *sync.WaitGroup, tick tickFunc) *schedule {
	ctx, cancel := context.WithCancel(ctx)
	running := &schedule{
		cancel:  cancel,
		done:    make(chan struct{}),
		trigger: make(chan struct{}, 1),
	}
	ticker := timeSource.NewTicker(interval)

	launch := func() {
		issuedAt := timeSource.Now()
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			tick(ctx, issuedAt)
		}()
	}

	go func() {
		defer close(running.done)
		defer ticker.Stop()
		launch()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				launch()
			case <-running.trigger:
				launch()
			}
		}
	}()
	return running
}

// stop cancels the schedule's context and waits for its loop to exit.
// Ticks already launched keep running until their fetch observes the
// cancellation; they must re-validate before applying anything.
func (running *schedule) stop() {
	running.cancel()
	<-running.done
}

// poke requests an out-of-band tick. Multiple pokes before the loop
// wakes collapse into one.
func (running *schedule) poke() {
	select {
	case running.trigger <- struct{}{}:
	default:
	}
}

// DetailPoller refreshes the selected ticket. It is Idle when nothing
// is selected and Polling exactly one ticket otherwise.
type DetailPoller struct {
	clock    clock.Clock
	interval time.Duration
	inflight *sync.WaitGroup
	tick     func(ctx context.Context, ticketID string, issuedAt time.Time)

	mu       sync.Mutex
	ticketID string
	running  *schedule
}

// Poll enters Polling for ticketID. If another ticket is being polled
// its schedule is stopped first; if ticketID is already being polled
// nothing changes.
func (poller *DetailPoller) Poll(ctx context.Context, ticketID string) {
	poller.mu.Lock()
	defer poller.mu.Unlock()

	if poller.running != nil && poller.ticketID == ticketID {
		return
	}
	poller.stopLocked()
	poller.ticketID = ticketID
	poller.running = startSchedule(ctx, poller.clock, poller.interval, poller.inflight,
		func(ctx context.Context, issuedAt time.Time) {
			poller.tick(ctx, ticketID, issuedAt)
		})
}

// Idle stops polling.
func (poller *DetailPoller) Idle() {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	poller.stopLocked()
}

// TicketID returns the ticket being polled, or "" when idle.
func (poller *DetailPoller) TicketID() string {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	return poller.ticketID
}

func (poller *DetailPoller) stopLocked() {
	if poller.running != nil {
		poller.running.stop()
		poller.running = nil
	}
	poller.ticketID = ""
}

// ListPoller refreshes the ticket list for the life of the session.
type ListPoller struct {
	clock    clock.Clock
	interval time.Duration
	inflight *sync.WaitGroup
	tick     tickFunc

	mu      sync.Mutex
	running *schedule
}

// Start begins polling. Calling Start while running is a no-op.
func (poller *ListPoller) Start(ctx context.Context) {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.running != nil {
		return
	}
	poller.running = startSchedule(ctx, poller.clock, poller.interval, poller.inflight, poller.tick)
}

// Refresh requests a tick now, outside the regular interval. Ignored
// when the poller is not running.
func (poller *ListPoller) Refresh() {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.running != nil {
		poller.running.poke()
	}
}

// Stop ends polling and waits for the schedule loop to exit.
func (poller *ListPoller) Stop() {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.running != nil {
		poller.running.stop()
		poller.running = nil
	}
}
