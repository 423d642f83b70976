package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Atypix/Smart100-sub002/internal/types"
)

// listItem implements the list.Item interface for the report list.
type listItem struct {
	name        string
	description string
	path        string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewReportList creates a new list over the discovered run report files.
func NewReportList(paths []string) list.Model {
	items := make([]list.Item, 0, len(paths))
	for _, path := range paths {
		items = append(items, listItem{
			name:        filepath.Base(path),
			description: filepath.Dir(path),
			path:        path,
		})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Run Report"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewFilterInput creates a new text input for the strategy filter.
func NewFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "sma_crossover,rsi_reversion"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseStrategyFilter parses comma-separated strategy ids into a slice.
func ParseStrategyFilter(input string) []string {
	parts := strings.Split(input, ",")
	ids := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToLower(p))
		if s != "" {
			ids = append(ids, s)
		}
	}

	return ids
}

// FormatParameters renders a parameter set as space-separated key=value pairs.
func FormatParameters(params map[string]any) string {
	if len(params) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, params[key]))
	}

	return strings.Join(pairs, " ")
}

// NewEventTable creates a new table for displaying selection events.
func NewEventTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 18},
		{Title: "Strategy", Width: 16},
		{Title: "Score", Width: 14},
		{Title: "Signal", Width: 8},
		{Title: "Parameters", Width: 32},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// matchesFilter reports whether the strategy id passes the filter.
// An empty filter matches every strategy.
func matchesFilter(strategyID string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}

	for _, id := range filters {
		if id == strategyID {
			return true
		}
	}

	return false
}

// UpdateEventRows fills the table with the report's selection events.
// Score indicators compare each event against the strategy's previous
// winning score across the whole run, not just the filtered view.
func UpdateEventRows(t table.Model, events []types.SelectionEvent, filters []string) table.Model {
	prevScores := make(map[string]float64)
	rows := make([]table.Row, 0, len(events))

	for _, event := range events {
		prev, hasPrev := prevScores[event.StrategyID]

		if matchesFilter(event.StrategyID, filters) {
			rows = append(rows, table.Row{
				event.Time.Format("2006-01-02 15:04"),
				event.StrategyID,
				FormatScoreWithColor(event.Score, prev, hasPrev),
				string(event.Signal),
				FormatParameters(event.Parameters),
			})
		}

		prevScores[event.StrategyID] = event.Score
	}

	t.SetRows(rows)

	return t
}
