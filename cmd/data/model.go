package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Atypix/Smart100-sub002/internal/engine"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// Application states.
const (
	StateReportSelect = iota
	StateStrategyInput
	StateReportDisplay
)

// Model is the main Bubble Tea model for the run report browser.
type Model struct {
	state       int
	reportList  list.Model
	filterInput textinput.Model
	eventTable  table.Model
	report      *types.RunReport
	reportPath  string
	filters     []string
	err         error
	width       int
	height      int
}

// NewModel creates a new Model over the discovered report paths.
func NewModel(reportPaths []string) Model {
	return Model{
		state:       StateReportSelect,
		reportList:  NewReportList(reportPaths),
		filterInput: NewFilterInput(),
		eventTable:  NewEventTable(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateStrategyInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reportList.SetSize(msg.Width, msg.Height-4)
		m.eventTable.SetWidth(msg.Width)
		m.eventTable.SetHeight(msg.Height - 6)
		return m, nil

	case ReportLoadedMsg:
		report := msg.Report
		m.report = &report
		m.err = nil
		m.state = StateStrategyInput
		m.filterInput.Focus()
		return m, textinput.Blink

	case LoadErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateReportSelect:
		return m.updateReportSelect(msg)
	case StateStrategyInput:
		return m.updateStrategyInput(msg)
	case StateReportDisplay:
		return m.updateReportDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateStrategyInput:
		// Drop the loaded report and pick another one
		m.report = nil
		m.reportPath = ""
		m.err = nil
		m.filterInput.Reset()
		m.state = StateReportSelect
	case StateReportDisplay:
		// Keep the report but re-enter the filter
		m.filters = nil
		m.err = nil
		m.filterInput.Reset()
		m.filterInput.Focus()
		m.state = StateStrategyInput
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateReportSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.reportList.SelectedItem().(listItem); ok {
				m.reportPath = item.path
				return m, loadReport(item.path)
			}
		}
	}

	var cmd tea.Cmd
	m.reportList, cmd = m.reportList.Update(msg)
	return m, cmd
}

func (m Model) updateStrategyInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.report != nil {
				m.filters = ParseStrategyFilter(m.filterInput.Value())
				m.eventTable = UpdateEventRows(m.eventTable, m.report.Selections, m.filters)
				m.filterInput.Blur()
				m.state = StateReportDisplay
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) updateReportDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.eventTable, cmd = m.eventTable.Update(msg)
	return m, cmd
}

// loadReport returns a command that reads a run report from disk. Reports
// written by an incompatible engine version surface as load errors.
func loadReport(path string) tea.Cmd {
	return func() tea.Msg {
		report, err := engine.LoadRunReport(path)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return ReportLoadedMsg{Report: report}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateReportSelect:
		s.WriteString(TitleStyle.Render("Selection Engine - Run Reports"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(m.reportList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to open, q to quit"))

	case StateStrategyInput:
		s.WriteString(TitleStyle.Render("Filter Strategies"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated strategy ids, or leave empty for all:\n\n")
		s.WriteString(m.filterInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateReportDisplay:
		if m.report == nil {
			s.WriteString("Waiting for report...\n")
			break
		}

		s.WriteString(TitleStyle.Render(fmt.Sprintf("Selections - %s (%s)", m.report.Symbol, m.report.Metric)))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%d bars | buy %d sell %d hold %d | engine %s\n\n",
			m.report.BarsProcessed, m.report.SignalCounts.Buy, m.report.SignalCounts.Sell, m.report.SignalCounts.Hold, m.report.EngineVersion))

		if len(m.eventTable.Rows()) == 0 {
			s.WriteString("No selection events.\n")
		} else {
			s.WriteString(m.eventTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("q: quit | Esc: back | Report: %s", m.reportPath)))
	}

	return s.String()
}
