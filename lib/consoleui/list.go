// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
)

// priorityLabel returns a fixed-width tag for a priority.
func priorityLabel(priority support.Priority) string {
	switch priority {
	case support.PriorityUrgent:
		return "URG"
	case support.PriorityHigh:
		return "HI "
	case support.PriorityMedium:
		return "MED"
	case support.PriorityLow:
		return "LOW"
	default:
		return "   "
	}
}

// ListRenderer renders rows of the ticket list at a fixed width.
type ListRenderer struct {
	theme Theme
	width int
}

// NewListRenderer creates a renderer for a list pane of the given width.
func NewListRenderer(theme Theme, width int) ListRenderer {
	return ListRenderer{theme: theme, width: width}
}

// RenderRow renders one ticket as a single line:
//
//	● URG Subject text…            (3)
//
// The status dot and priority tag are colored; the unread badge is
// omitted when there is nothing unread. The selected row is drawn in
// reverse colors.
func (renderer ListRenderer) RenderRow(row ticketsync.Row, cursor, open bool) string {
	marker := "●"
	if open {
		marker = "▶"
	}
	badge := ""
	if row.Unread > 0 {
		badge = fmt.Sprintf(" (%d)", row.Unread)
	}

	prefixWidth := 2 + 4
	subjectWidth := renderer.width - prefixWidth - ansi.StringWidth(badge)
	if subjectWidth < 1 {
		subjectWidth = 1
	}
	subject := ansi.Truncate(row.Ticket.Subject, subjectWidth, "…")
	padding := strings.Repeat(" ", max(0, subjectWidth-ansi.StringWidth(subject)))

	if cursor {
		line := marker + " " + priorityLabel(row.Ticket.Priority) + " " + subject + padding + badge
		return lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground).
			Bold(true).
			Render(line)
	}

	markerStyle := lipgloss.NewStyle().Foreground(renderer.theme.StatusColor(row.Ticket.Status))
	priorityStyle := lipgloss.NewStyle().Foreground(renderer.theme.PriorityColor(row.Ticket.Priority))
	subjectStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	if row.Unread > 0 {
		subjectStyle = subjectStyle.Bold(true)
	}
	badgeStyle := lipgloss.NewStyle().Foreground(renderer.theme.UnreadBadge).Bold(true)

	return markerStyle.Render(marker) + " " +
		priorityStyle.Render(priorityLabel(row.Ticket.Priority)) + " " +
		subjectStyle.Render(subject) + padding +
		badgeStyle.Render(badge)
}
