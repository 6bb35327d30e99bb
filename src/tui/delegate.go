package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Delegate renders one run per row: id, ref@sha, status, stage progress.
type Delegate struct {
	styles *StyleConfig
}

// NewDelegate creates a new run list delegate.
func NewDelegate() Delegate {
	return Delegate{styles: DefaultStyles()}
}

// Height returns the row height (required by list.ItemDelegate).
func (d Delegate) Height() int { return 1 }

// Spacing returns the inter-row spacing (required by list.ItemDelegate).
func (d Delegate) Spacing() int { return 0 }

// Update handles delegate-level messages (required by list.ItemDelegate).
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render draws one run row.
func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(Item)
	if !ok {
		return
	}

	id := TruncateAndPad(shortID(item.Run.ID), 10, false)
	ref := TruncateAndPad(item.Run.Ref+" @ "+shortSHA(item.Run.HeadSHA), 40, true)
	status := d.styles.StatusStyle(string(item.Run.Status)).
		Render(TruncateAndPad(string(item.Run.Status), 10, false))
	progress := stageSummary(item.Run)

	row := fmt.Sprintf("%s %s %s %s", id, ref, status, progress)
	if index == m.Index() {
		row = lipgloss.NewStyle().
			Background(d.styles.SelectedColor).
			Foreground(d.styles.TextPrimary).
			Render("> " + row)
	} else {
		row = "  " + row
	}

	fmt.Fprint(w, row)
}
