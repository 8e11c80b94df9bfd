// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// Theme defines the color palette for the console.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	PriorityUrgent lipgloss.Color
	PriorityHigh   lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityLow    lipgloss.Color

	StatusOpen       lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusResolved   lipgloss.Color
	StatusClosed     lipgloss.Color

	// UnreadBadge colors the unread count next to a ticket subject.
	UnreadBadge lipgloss.Color

	// UserSender and AdminSender color the sender line of a message.
	UserSender  lipgloss.Color
	AdminSender lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	WarnText  lipgloss.Color
	ErrorText lipgloss.Color
}

// StatusColor returns the color for a ticket status.
func (theme Theme) StatusColor(status support.Status) lipgloss.Color {
	switch status {
	case support.StatusOpen:
		return theme.StatusOpen
	case support.StatusInProgress:
		return theme.StatusInProgress
	case support.StatusResolved:
		return theme.StatusResolved
	case support.StatusClosed:
		return theme.StatusClosed
	default:
		return theme.FaintText
	}
}

// PriorityColor returns the color for a ticket priority.
func (theme Theme) PriorityColor(priority support.Priority) lipgloss.Color {
	switch priority {
	case support.PriorityUrgent:
		return theme.PriorityUrgent
	case support.PriorityHigh:
		return theme.PriorityHigh
	case support.PriorityMedium:
		return theme.PriorityMedium
	case support.PriorityLow:
		return theme.PriorityLow
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme, tuned for
// 256-color terminals.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	PriorityUrgent: lipgloss.Color("196"), // bright red
	PriorityHigh:   lipgloss.Color("208"), // orange
	PriorityMedium: lipgloss.Color("75"),  // blue
	PriorityLow:    lipgloss.Color("245"), // gray

	StatusOpen:       lipgloss.Color("114"), // green
	StatusInProgress: lipgloss.Color("220"), // amber
	StatusResolved:   lipgloss.Color("141"), // light purple
	StatusClosed:     lipgloss.Color("245"), // gray

	UnreadBadge: lipgloss.Color("203"),

	UserSender:  lipgloss.Color("117"),
	AdminSender: lipgloss.Color("150"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	WarnText:  lipgloss.Color("220"),
	ErrorText: lipgloss.Color("196"),
}
