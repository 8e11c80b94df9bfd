// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
)

// Session is the part of ticketsync.Session the console drives.
type Session interface {
	Snapshot() ticketsync.Snapshot
	Select(ticketID string)
	ClearSelection()
	SetFilters(filters support.Filters) error
	SetDraft(text string)
	SetScrollAnchor(messageID string)
	SetNotesPanelOpen(open bool)
	SendReply(ctx context.Context) error
}

// FocusRegion identifies which element receives keystrokes.
type FocusRegion int

const (
	// FocusList routes keys to list navigation and commands.
	FocusList FocusRegion = iota
	// FocusCompose routes keys to the reply input.
	FocusCompose
	// FocusSearch routes keys to the search input.
	FocusSearch
)

const (
	// sendTimeout bounds a reply post started from the console.
	sendTimeout = 15 * time.Second

	// chromeHeight is the number of rows outside the two panes:
	// filter bar, reply line, separator, and status bar.
	chromeHeight = 4

	// listWidthPercent is the share of the width given to the list.
	listWidthPercent = 40
)

// sessionEventMsg delivers a session event through the bubbletea loop.
type sessionEventMsg struct {
	event ticketsync.Event
}

// replySentMsg reports the result of an asynchronous SendReply.
type replySentMsg struct {
	err error
}

// Model is the bubbletea model of the support console.
type Model struct {
	session Session
	events  <-chan ticketsync.Event
	keys    KeyMap
	theme   Theme

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	focus    FocusRegion
	cursor   int
	snapshot ticketsync.Snapshot

	draft  textinput.Model
	search textinput.Model

	replyPending bool

	status         string
	statusLevel    slog.Level
	statusSequence int
}

// NewModel creates a console over session. events is the session's
// subscription channel; the model re-reads the snapshot on each event.
func NewModel(session Session, events <-chan ticketsync.Event) Model {
	draft := textinput.New()
	draft.Placeholder = "Type a reply"
	draft.Prompt = "> "
	draft.CharLimit = 4000

	search := textinput.New()
	search.Placeholder = "search subject, description, messages"
	search.Prompt = "/"
	search.CharLimit = 200

	model := Model{
		session: session,
		events:  events,
		keys:    DefaultKeyMap,
		theme:   DefaultTheme,
		draft:   draft,
		search:  search,
	}
	model.refresh()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForSessionEvent(model.events)
}

// listenForSessionEvent blocks until the session publishes an event.
// A closed channel ends the subscription.
func listenForSessionEvent(channel <-chan ticketsync.Event) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch model.focus {
		case FocusCompose:
			return model.handleComposeKeys(message)
		case FocusSearch:
			return model.handleSearchKeys(message)
		}
		return model.handleListKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.draft.Width = max(10, message.Width-4)
		model.search.Width = max(10, message.Width-4)

	case sessionEventMsg:
		model.refresh()
		var cmd tea.Cmd
		switch message.event.Kind {
		case ticketsync.EventAlert:
			cmd = model.setStatus(slog.LevelInfo, "New customer message on "+model.subjectOf(message.event.TicketID))
		case ticketsync.EventFetchFailed:
			cmd = model.setStatus(slog.LevelWarn, fmt.Sprintf("refresh failed: %v", message.event.Err))
		}
		return model, tea.Batch(cmd, listenForSessionEvent(model.events))

	case replySentMsg:
		model.replyPending = false
		model.refresh()
		if message.err != nil {
			return model, model.setStatus(slog.LevelError, fmt.Sprintf("reply not sent: %v", message.err))
		}
		return model, model.setStatus(slog.LevelInfo, "Reply sent")

	case statusMsg:
		return model, model.setStatus(message.Level, message.Summary)

	case statusFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = ""
		}
	}
	return model, nil
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.snapshot.Rows)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Open):
		if ticketID := model.cursorTicketID(); ticketID != "" {
			model.session.Select(ticketID)
			model.refresh()
		}

	case key.Matches(message, model.keys.Close):
		model.session.ClearSelection()
		model.refresh()

	case key.Matches(message, model.keys.Compose):
		if model.snapshot.Selected != nil {
			model.focus = FocusCompose
			return model, model.draft.Focus()
		}

	case key.Matches(message, model.keys.ScrollUp):
		model.scroll(-1)

	case key.Matches(message, model.keys.ScrollDown):
		model.scroll(1)

	case key.Matches(message, model.keys.ScrollEnd):
		if model.snapshot.Selected != nil {
			model.session.SetScrollAnchor("")
			model.refresh()
		}

	case key.Matches(message, model.keys.ToggleNotes):
		if selected := model.snapshot.Selected; selected != nil {
			model.session.SetNotesPanelOpen(!selected.NotesPanelOpen)
			model.refresh()
		}

	case key.Matches(message, model.keys.Search):
		model.focus = FocusSearch
		model.search.SetValue(model.snapshot.Filters.Search)
		model.search.CursorEnd()
		return model, model.search.Focus()

	case key.Matches(message, model.keys.CycleStatus):
		filters := model.snapshot.Filters
		filters.Status = nextInCycle(statusCycle, filters.Status)
		return model, model.applyFilters(filters)

	case key.Matches(message, model.keys.CyclePriority):
		filters := model.snapshot.Filters
		filters.Priority = nextInCycle(priorityCycle, filters.Priority)
		return model, model.applyFilters(filters)

	case key.Matches(message, model.keys.ClearFilters):
		return model, model.applyFilters(support.Filters{})
	}
	return model, nil
}

func (model Model) handleComposeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.Close):
		model.focus = FocusList
		model.draft.Blur()
		return model, nil

	case key.Matches(message, model.keys.Send):
		if model.replyPending || strings.TrimSpace(model.draft.Value()) == "" {
			return model, nil
		}
		model.replyPending = true
		return model, sendReply(model.session)
	}

	var cmd tea.Cmd
	model.draft, cmd = model.draft.Update(message)
	model.session.SetDraft(model.draft.Value())
	return model, cmd
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.Close):
		model.focus = FocusList
		model.search.Blur()
		return model, nil

	case message.Type == tea.KeyEnter:
		model.focus = FocusList
		model.search.Blur()
		filters := model.snapshot.Filters
		filters.Search = strings.TrimSpace(model.search.Value())
		return model, model.applyFilters(filters)
	}

	var cmd tea.Cmd
	model.search, cmd = model.search.Update(message)
	return model, cmd
}

// sendReply posts the draft off the event loop.
func sendReply(session Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return replySentMsg{err: session.SendReply(ctx)}
	}
}

func (model *Model) applyFilters(filters support.Filters) tea.Cmd {
	if err := model.session.SetFilters(filters); err != nil {
		return model.setStatus(slog.LevelError, err.Error())
	}
	model.cursor = 0
	model.refresh()
	return nil
}

// scroll moves the scroll anchor by delta messages. Scrolling down to
// the newest page pins the view to the tail again.
func (model *Model) scroll(delta int) {
	selected := model.snapshot.Selected
	if selected == nil || len(selected.Ticket.Messages) == 0 {
		return
	}
	messages := selected.Ticket.Messages
	renderer := model.detailRenderer()
	tail := renderer.TailStart(messages, model.messageAreaHeight(selected))

	current := anchorIndex(messages, selected.ScrollAnchor)
	if current < 0 {
		current = tail
	}
	next := min(max(current+delta, 0), len(messages)-1)

	anchor := messages[next].ID
	if next >= tail {
		anchor = ""
	}
	model.session.SetScrollAnchor(anchor)
	model.refresh()
}

// refresh re-reads the session snapshot, keeps the cursor on the same
// ticket when it is still listed, and syncs the reply input with the
// selection's draft.
func (model *Model) refresh() {
	previousID := model.cursorTicketID()
	model.snapshot = model.session.Snapshot()

	if previousID != "" {
		for index, row := range model.snapshot.Rows {
			if row.Ticket.ID == previousID {
				model.cursor = index
				break
			}
		}
	}
	if model.cursor >= len(model.snapshot.Rows) {
		model.cursor = max(0, len(model.snapshot.Rows)-1)
	}

	draft := ""
	if model.snapshot.Selected != nil {
		draft = model.snapshot.Selected.Draft
	} else if model.focus == FocusCompose {
		model.focus = FocusList
		model.draft.Blur()
	}
	if model.draft.Value() != draft {
		model.draft.SetValue(draft)
	}
}

// setStatus shows summary in the status bar and schedules its fade.
func (model *Model) setStatus(level slog.Level, summary string) tea.Cmd {
	model.statusSequence++
	model.status = summary
	model.statusLevel = level
	sequence := model.statusSequence
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{sequence: sequence}
	})
}

func (model *Model) cursorTicketID() string {
	if model.cursor < 0 || model.cursor >= len(model.snapshot.Rows) {
		return ""
	}
	return model.snapshot.Rows[model.cursor].Ticket.ID
}

func (model *Model) subjectOf(ticketID string) string {
	for _, row := range model.snapshot.Rows {
		if row.Ticket.ID == ticketID {
			return fmt.Sprintf("%q", row.Ticket.Subject)
		}
	}
	return ticketID
}

func (model Model) contentHeight() int {
	return max(1, model.height-chromeHeight)
}

func (model Model) listWidth() int {
	return max(20, model.width*listWidthPercent/100)
}

func (model Model) detailWidth() int {
	return max(20, model.width-model.listWidth()-1)
}

func (model Model) detailRenderer() DetailRenderer {
	return NewDetailRenderer(model.theme, model.detailWidth(), model.contentHeight())
}

// messageAreaHeight mirrors the detail layout: the pane minus the
// header and the notes panel.
func (model Model) messageAreaHeight(selected *ticketsync.Selection) int {
	renderer := model.detailRenderer()
	height := model.contentHeight() - len(renderer.renderHeader(&selected.Ticket, nil))
	if selected.NotesPanelOpen {
		height -= len(renderer.renderNotes(selected.Ticket.Notes))
	}
	return max(1, height)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string
	if model.focus == FocusSearch {
		sections = append(sections, model.search.View())
	} else {
		sections = append(sections, renderFilterBar(model.theme, model.snapshot.Filters, model.width))
	}

	height := model.contentHeight()
	pane := func(width int) lipgloss.Style {
		return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height)
	}
	listView := pane(model.listWidth()).Render(model.renderList(height))
	divider := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
	detailView := pane(model.detailWidth()).Render(
		model.detailRenderer().Render(model.snapshot.Selected, model.snapshot.DetailError))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, listView, divider, detailView))

	sections = append(sections, model.renderReplyLine())
	sections = append(sections, lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width)))
	sections = append(sections, model.renderStatusBar())

	return strings.Join(sections, "\n")
}

func (model Model) renderList(height int) string {
	rows := model.snapshot.Rows
	if len(rows) == 0 {
		text := "No tickets match the current filters."
		if model.snapshot.ListError != nil {
			text = "Ticket list unavailable: " + model.snapshot.ListError.Error()
		}
		return lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Width(model.listWidth()).
			Render(text)
	}

	offset := max(0, model.cursor-height+1)
	openID := ""
	if model.snapshot.Selected != nil {
		openID = model.snapshot.Selected.Ticket.ID
	}
	renderer := NewListRenderer(model.theme, model.listWidth())
	var lines []string
	for index := offset; index < len(rows) && len(lines) < height; index++ {
		row := rows[index]
		lines = append(lines, renderer.RenderRow(row, index == model.cursor, row.Ticket.ID == openID))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderReplyLine() string {
	if model.snapshot.Selected == nil {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("Open a ticket to reply.")
	}
	line := model.draft.View()
	if model.replyPending {
		line += lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  sending…")
	}
	return line
}

func (model Model) renderStatusBar() string {
	if model.status != "" {
		color := model.theme.NormalText
		switch {
		case model.statusLevel >= slog.LevelError:
			color = model.theme.ErrorText
		case model.statusLevel >= slog.LevelWarn:
			color = model.theme.WarnText
		}
		return lipgloss.NewStyle().Foreground(color).Render(ansi.Truncate(model.status, model.width, "…"))
	}

	var bindings []key.Binding
	switch model.focus {
	case FocusCompose:
		bindings = []key.Binding{model.keys.Send, model.keys.Close}
	case FocusSearch:
		bindings = []key.Binding{model.keys.Open, model.keys.Close}
	default:
		bindings = []key.Binding{
			model.keys.Up, model.keys.Down, model.keys.Open, model.keys.Compose,
			model.keys.ScrollUp, model.keys.ScrollDown, model.keys.ToggleNotes,
			model.keys.Search, model.keys.CycleStatus, model.keys.CyclePriority,
			model.keys.Quit,
		}
	}
	var parts []string
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().
		Foreground(model.theme.HelpText).
		Render(ansi.Truncate(strings.Join(parts, "  "), model.width, "…"))
}
