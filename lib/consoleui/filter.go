// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// statusCycle and priorityCycle are the values visited by the cycle
// keys. The empty value means "any".
var (
	statusCycle = []support.Status{
		"",
		support.StatusOpen,
		support.StatusInProgress,
		support.StatusResolved,
		support.StatusClosed,
	}
	priorityCycle = []support.Priority{
		"",
		support.PriorityUrgent,
		support.PriorityHigh,
		support.PriorityMedium,
		support.PriorityLow,
	}
)

// nextInCycle returns the value after current in cycle, wrapping to
// the first. An unknown current value restarts the cycle.
func nextInCycle[T comparable](cycle []T, current T) T {
	for index, value := range cycle {
		if value == current {
			return cycle[(index+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func filterValue(value string) string {
	if value == "" {
		return "any"
	}
	return value
}

// renderFilterBar renders the active filters on one line.
func renderFilterBar(theme Theme, filters support.Filters, width int) string {
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	value := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)

	line := label.Render("status ") + value.Render(filterValue(string(filters.Status))) +
		label.Render("  priority ") + value.Render(filterValue(string(filters.Priority)))
	if filters.Search != "" {
		line += label.Render("  search ") + value.Render(filters.Search)
	}
	return ansi.Truncate(line, width, "…")
}
