// Package tui renders the pipeline runs dashboard: a live list of recent
// runs with per-stage progress, refreshed from the run store.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"duckci-agent/src/contracts"
	"duckci-agent/src/store"
)

const (
	refreshInterval = 2 * time.Second
	runsPageSize    = 50
)

type tickMsg time.Time

type runsLoadedMsg struct {
	runs []*contracts.PipelineRun
	err  error
}

// Dashboard is the bubbletea model for the runs view.
type Dashboard struct {
	runs   store.RunStore
	list   list.Model
	styles *StyleConfig
	err    error
	width  int
	height int
}

// NewDashboard creates the dashboard backed by a run store.
func NewDashboard(runs store.RunStore) Dashboard {
	delegate := NewDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return Dashboard{
		runs:   runs,
		list:   l,
		styles: DefaultStyles(),
	}
}

// Init starts the refresh loop (required by tea.Model).
func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.loadRuns(), tick())
}

// Update handles messages (required by tea.Model).
func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		// Top half is the run list, bottom half the stage detail pane.
		d.list.SetSize(msg.Width-2, msg.Height/2)
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "r":
			return d, d.loadRuns()
		}

	case tickMsg:
		return d, tea.Batch(d.loadRuns(), tick())

	case runsLoadedMsg:
		d.err = msg.err
		if msg.err == nil {
			d.setRuns(msg.runs)
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

// View renders the dashboard (required by tea.Model).
func (d Dashboard) View() string {
	title := d.styles.TitleStyle().Render("duckci runs")
	help := d.styles.HelpStyle().Render("↑/↓ select · r refresh · q quit")

	body := d.list.View()
	if d.err != nil {
		body = d.styles.StatusStyle("failed").Render("error: " + d.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body, d.detailView(), help)
}

// detailView renders the stage results of the selected run.
func (d Dashboard) detailView() string {
	run, ok := d.SelectedRun()
	if !ok {
		return ""
	}

	lines := make([]string, 0, len(run.Stages)+1)
	lines = append(lines, d.styles.TitleStyle().Render("stages"))
	for _, stage := range run.Stages {
		line := "  " + TruncateAndPad(stage.Name, 45, true) + " " +
			d.styles.StatusStyle(string(stage.State)).Render(string(stage.State))
		if stage.Reason != "" {
			line += "  " + Truncate(stage.Reason, 60, true)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SelectedRun returns the currently selected run, if any.
func (d Dashboard) SelectedRun() (*contracts.PipelineRun, bool) {
	if len(d.list.Items()) == 0 {
		return nil, false
	}
	item, ok := d.list.SelectedItem().(Item)
	if !ok {
		return nil, false
	}
	return item.Run, true
}

func (d *Dashboard) setRuns(runs []*contracts.PipelineRun) {
	items := make([]list.Item, len(runs))
	for i, run := range runs {
		items[i] = Item{Run: run}
	}
	d.list.SetItems(items)
}

func (d Dashboard) loadRuns() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		runs, err := d.runs.ListRuns(ctx, runsPageSize)
		return runsLoadedMsg{runs: runs, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
