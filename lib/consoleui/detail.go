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

// notesPanelMaxFraction limits the notes panel to a third of the
// detail pane.
const notesPanelMaxFraction = 3

// DetailRenderer renders the open ticket at a fixed size.
type DetailRenderer struct {
	theme  Theme
	width  int
	height int
}

// NewDetailRenderer creates a renderer for a detail pane of the given size.
func NewDetailRenderer(theme Theme, width, height int) DetailRenderer {
	return DetailRenderer{theme: theme, width: width, height: height}
}

// Render draws the header, as many messages as fit starting at the
// selection's scroll anchor, and the notes panel when it is open.
// detailError, when non-nil, replaces the last header line.
func (renderer DetailRenderer) Render(selection *ticketsync.Selection, detailError error) string {
	if selection == nil {
		return lipgloss.NewStyle().
			Foreground(renderer.theme.FaintText).
			Render("No ticket open. Select one and press Enter.")
	}
	ticket := &selection.Ticket

	lines := renderer.renderHeader(ticket, detailError)

	var notes []string
	if selection.NotesPanelOpen {
		notes = renderer.renderNotes(ticket.Notes)
	}

	available := renderer.height - len(lines) - len(notes)
	if available < 1 {
		available = 1
	}
	lines = append(lines, renderer.renderMessages(ticket.Messages, selection.ScrollAnchor, available)...)
	for len(lines) < renderer.height-len(notes) {
		lines = append(lines, "")
	}
	lines = append(lines, notes...)
	if len(lines) > renderer.height {
		lines = lines[:renderer.height]
	}
	return strings.Join(lines, "\n")
}

func (renderer DetailRenderer) renderHeader(ticket *support.Ticket, detailError error) []string {
	subject := lipgloss.NewStyle().
		Foreground(renderer.theme.HeaderForeground).
		Bold(true).
		Render(ansi.Truncate(ticket.Subject, renderer.width, "…"))

	faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	meta := faint.Render(ticket.ID+" · ") +
		lipgloss.NewStyle().Foreground(renderer.theme.StatusColor(ticket.Status)).Render(string(ticket.Status)) +
		faint.Render(" · ") +
		lipgloss.NewStyle().Foreground(renderer.theme.PriorityColor(ticket.Priority)).Render(string(ticket.Priority))
	if ticket.Assignee != "" {
		meta += faint.Render(" · " + ticket.Assignee)
	}

	status := lipgloss.NewStyle().Foreground(renderer.theme.BorderColor).Render(strings.Repeat("─", renderer.width))
	if detailError != nil {
		status = lipgloss.NewStyle().
			Foreground(renderer.theme.WarnText).
			Render(ansi.Truncate("refresh failed: "+detailError.Error(), renderer.width, "…"))
	}
	return []string{subject, ansi.Truncate(meta, renderer.width, "…"), status}
}

// messageBlock renders one message as a sender line followed by the
// wrapped body.
func (renderer DetailRenderer) messageBlock(message *support.Message) []string {
	var color lipgloss.Color
	sender := message.SenderName
	switch message.SenderRole {
	case support.RoleUser:
		color = renderer.theme.UserSender
	case support.RoleAdmin:
		color = renderer.theme.AdminSender
	default:
		color = renderer.theme.FaintText
	}
	if sender == "" {
		sender = string(message.SenderRole)
	}
	if sender == "" {
		sender = "?"
	}
	header := lipgloss.NewStyle().Foreground(color).Bold(true).Render(sender)
	if !message.CreatedAt.IsZero() {
		header += lipgloss.NewStyle().
			Foreground(renderer.theme.FaintText).
			Render(" · " + message.CreatedAt.Local().Format("Jan 2 15:04"))
	}

	body := lipgloss.NewStyle().
		Foreground(renderer.theme.NormalText).
		Width(renderer.width).
		Render(message.Body)
	return append([]string{header}, strings.Split(body, "\n")...)
}

// TailStart returns the index of the first message shown when the view
// is pinned to the newest messages: the smallest index whose blocks,
// through the last message, fit in height lines.
func (renderer DetailRenderer) TailStart(messages []support.Message, height int) int {
	used := 0
	start := len(messages)
	for index := len(messages) - 1; index >= 0; index-- {
		size := len(renderer.messageBlock(&messages[index]))
		if index < len(messages)-1 {
			size++ // blank separator line
		}
		if used+size > height && start < len(messages) {
			break
		}
		used += size
		start = index
	}
	return start
}

// renderMessages renders messages starting at the anchor message. An
// empty or unknown anchor pins the view to the newest messages.
func (renderer DetailRenderer) renderMessages(messages []support.Message, anchor string, height int) []string {
	if len(messages) == 0 {
		return []string{lipgloss.NewStyle().Foreground(renderer.theme.FaintText).Render("No messages yet.")}
	}

	start := anchorIndex(messages, anchor)
	if start < 0 {
		start = renderer.TailStart(messages, height)
	}

	var lines []string
	for index := start; index < len(messages) && len(lines) < height; index++ {
		if index > start {
			lines = append(lines, "")
		}
		lines = append(lines, renderer.messageBlock(&messages[index])...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}

func (renderer DetailRenderer) renderNotes(notes []support.InternalNote) []string {
	limit := renderer.height / notesPanelMaxFraction
	if limit < 2 {
		limit = 2
	}
	title := lipgloss.NewStyle().
		Foreground(renderer.theme.HeaderForeground).
		Render(fmt.Sprintf("Internal notes (%d)", len(notes)))
	lines := []string{title}
	faint := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	for index := len(notes) - 1; index >= 0 && len(lines) < limit; index-- {
		note := notes[index]
		author := note.AuthorName
		if author == "" {
			author = "admin"
		}
		lines = append(lines, ansi.Truncate(faint.Render(author+": ")+note.Body, renderer.width, "…"))
	}
	return lines
}

// anchorIndex returns the index of the message with the given id, or
// -1 when the anchor is empty or no longer present.
func anchorIndex(messages []support.Message, anchor string) int {
	if anchor == "" {
		return -1
	}
	for index := range messages {
		if messages[index].ID == anchor {
			return index
		}
	}
	return -1
}
