// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
)

func TestRenderRowFitsWidth(t *testing.T) {
	renderer := NewListRenderer(DefaultTheme, 30)
	row := ticketsync.Row{
		Ticket: support.Ticket{ID: "tkt-1", Subject: strings.Repeat("very long subject ", 5), Priority: support.PriorityUrgent},
		Unread: 12,
	}
	for _, cursor := range []bool{false, true} {
		line := ansi.Strip(renderer.RenderRow(row, cursor, false))
		if width := ansi.StringWidth(line); width != 30 {
			t.Errorf("cursor=%v: row width = %d, want 30: %q", cursor, width, line)
		}
		if !strings.HasSuffix(line, "(12)") || !strings.Contains(line, "URG") {
			t.Errorf("cursor=%v: row = %q", cursor, line)
		}
	}

	read := ansi.Strip(renderer.RenderRow(ticketsync.Row{Ticket: support.Ticket{Subject: "Done"}}, false, true))
	if strings.Contains(read, "(") || !strings.HasPrefix(read, "▶") {
		t.Errorf("read open row = %q", read)
	}
}

func TestDetailRenderTailAndAnchor(t *testing.T) {
	ticket := conversation("tkt-a", "Thread", "one", "two", "three", "four", "five", "six")
	renderer := NewDetailRenderer(DefaultTheme, 40, 10)

	// 3 header lines leave 7. The last message takes 2 lines and each
	// earlier one 3 with its separator, so only two messages fit.
	if got := renderer.TailStart(ticket.Messages, 7); got != 4 {
		t.Fatalf("TailStart = %d, want 4", got)
	}

	tail := ansi.Strip(renderer.Render(&ticketsync.Selection{Ticket: ticket}, nil))
	if !strings.Contains(tail, "six") || strings.Contains(tail, "one") {
		t.Fatalf("tail view:\n%s", tail)
	}
	if lines := strings.Count(tail, "\n") + 1; lines != 10 {
		t.Errorf("rendered %d lines, want 10", lines)
	}

	anchored := ansi.Strip(renderer.Render(&ticketsync.Selection{Ticket: ticket, ScrollAnchor: ticket.Messages[0].ID}, nil))
	if !strings.Contains(anchored, "one") || strings.Contains(anchored, "six") {
		t.Fatalf("anchored view:\n%s", anchored)
	}

	// An anchor that no longer exists falls back to the tail.
	missing := ansi.Strip(renderer.Render(&ticketsync.Selection{Ticket: ticket, ScrollAnchor: "gone"}, nil))
	if !strings.Contains(missing, "six") {
		t.Fatalf("missing-anchor view:\n%s", missing)
	}
}

func TestDetailRenderErrorAndEmpty(t *testing.T) {
	renderer := NewDetailRenderer(DefaultTheme, 60, 8)
	ticket := support.Ticket{ID: "tkt-z", Subject: "Quiet", Status: support.StatusClosed, Priority: support.PriorityLow}

	view := ansi.Strip(renderer.Render(&ticketsync.Selection{Ticket: ticket}, errors.New("timeout")))
	for _, want := range []string{"Quiet", "tkt-z · closed · low", "refresh failed: timeout", "No messages yet."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	if none := ansi.Strip(renderer.Render(nil, nil)); !strings.Contains(none, "No ticket open") {
		t.Errorf("empty view = %q", none)
	}
}

func TestNextInCycle(t *testing.T) {
	if got := nextInCycle(statusCycle, support.StatusClosed); got != "" {
		t.Errorf("after closed = %q, want any", got)
	}
	if got := nextInCycle(priorityCycle, support.Priority("bogus")); got != "" {
		t.Errorf("after unknown = %q, want any", got)
	}
	if got := nextInCycle(priorityCycle, support.PriorityHigh); got != support.PriorityMedium {
		t.Errorf("after high = %q, want medium", got)
	}
}
