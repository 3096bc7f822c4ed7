package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// TaskItem wraps a model.Task for use in a bubbles/list.
type TaskItem struct {
	Task      model.Task
	Overdue   bool
	Restarted bool
}

// FilterValue returns the string used for filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line.
func (i TaskItem) Description() string {
	parts := []string{string(i.Task.Status), string(i.Task.Priority.OrDefault())}
	if i.Task.DueDate != nil {
		parts = append(parts, "due "+i.Task.DueDate.Date())
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate renders one task per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(it, index == m.Index()))
}

func renderLine(it TaskItem, selected bool) string {
	t := it.Task

	prefix := "○"
	switch t.Status {
	case model.StatusDone:
		prefix = "✓"
	case model.StatusCanceled:
		prefix = "✗"
	}

	status := theme.StatusStyle(t.Status).Render(t.Status.Label())
	priority := theme.PriorityStyle(t.Priority).Render(string(t.Priority.OrDefault()))

	due := ""
	if t.DueDate != nil && t.DueDate.String() != "" {
		due = theme.DueDateStyle.Render(" " + t.DueDate.Date())
	}

	overdue := ""
	if it.Overdue {
		overdue = theme.OverdueStyle.Render(" OVERDUE")
	}

	restarted := ""
	if it.Restarted {
		restarted = theme.DimmedStyle.Render(" (restarted)")
	}

	line := fmt.Sprintf("%s %s %s %s%s%s%s", prefix, status, priority, t.Title, due, overdue, restarted)

	if t.Status.Terminal() {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
