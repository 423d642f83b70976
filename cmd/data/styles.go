package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)
)

// FormatScoreWithColor formats a score with an indicator based on comparison
// with the strategy's previous winning score. Scores can legitimately be zero
// or negative, so hasPrevious marks whether a previous score exists at all.
func FormatScoreWithColor(current float64, previous float64, hasPrevious bool) string {
	scoreStr := fmt.Sprintf("%.4f", current)

	if !hasPrevious {
		return scoreStr
	}

	if current > previous {
		return scoreStr + " ▲"
	} else if current < previous {
		return scoreStr + " ▼"
	}

	return scoreStr
}
