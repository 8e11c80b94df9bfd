// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that polling
// schedules can be driven deterministically in tests.
//
// Production code takes a Clock instead of calling time.Now,
// time.After, or time.NewTicker directly. Real() wraps the standard
// library; Fake() returns a clock that moves only when the test calls
// Advance.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	session, _ := ticketsync.NewSession(ticketsync.Config{Clock: c, ...})
//	session.Start(ctx)
//	c.WaitForTimers(1)         // list poller ticker registered
//	c.Advance(5 * time.Second) // fire one list tick
//
// # FakeClock Synchronization
//
// After and NewTicker register a pending waiter on a FakeClock.
// WaitForTimers blocks until a given number of waiters exist, which
// removes the race between a goroutine creating its ticker and the
// test advancing time.
package clock
