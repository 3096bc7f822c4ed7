package tasklist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/viewstate"
)

// SelectedTaskMsg is sent when the user opens a task.
type SelectedTaskMsg struct {
	Task model.Task
}

// SearchChangedMsg carries the search term after every edit.
type SearchChangedMsg struct {
	Term string
}

// Model is the board's task list.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	pager       paginator.Model
	searchMode  bool
	searchInput textinput.Model
	snapshot    viewstate.Snapshot
	width       int
	height      int
}

// New creates a new task list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, listHeight(height))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "search title or description..."
	si.Prompt = "/ "
	si.Width = width - 4

	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d of %d"

	return Model{
		list:        l,
		keys:        k,
		pager:       p,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// listHeight leaves room for the summary, search bar and pager lines.
func listHeight(height int) int {
	h := height - 4
	if h < 1 {
		return 1
	}
	return h
}

// SetSnapshot replaces the rows with the visible part of snap.
// restarted reports ids already cloned this session.
func (m *Model) SetSnapshot(snap viewstate.Snapshot, now time.Time, restarted func(model.ID) bool) tea.Cmd {
	m.snapshot = snap

	items := make([]list.Item, len(snap.Visible))
	for i, t := range snap.Visible {
		items[i] = TaskItem{
			Task:      t,
			Overdue:   t.IsOverdue(now),
			Restarted: restarted != nil && restarted(t.ID),
		}
	}

	m.pager.TotalPages = snap.State.PageCount(snap.Total)
	m.pager.Page = snap.State.Page
	if m.list.Index() >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return m.list.SetItems(items)
}

// SelectedTask returns the highlighted task, if any.
func (m Model) SelectedTask() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.Task, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		return m, searchChanged("")
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		return m, tea.Batch(searchChanged(after), cmd)
	}
	return m, cmd
}

func searchChanged(term string) tea.Cmd {
	return func() tea.Msg { return SearchChangedMsg{Term: term} }
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		t, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return SelectedTaskMsg{Task: t} }

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// FilterSummary describes the current query in one line.
func (m Model) FilterSummary() string {
	st := m.snapshot.State
	summary := fmt.Sprintf("status: %s · %d per page · %d total", st.StatusFilter.Param(), st.PageSize, m.snapshot.Total)
	if st.SearchTerm != "" {
		summary += fmt.Sprintf(" · search %q (%d on page)", st.SearchTerm, len(m.snapshot.Visible))
	}
	return summary
}

// View renders the task list view.
func (m Model) View() string {
	rows := []string{theme.HelpStyle.Render(m.FilterSummary())}

	if m.searchMode || m.searchInput.Value() != "" {
		rows = append(rows, lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View()))
	}

	if len(m.list.Items()) == 0 {
		rows = append(rows, m.renderEmptyState())
	} else {
		rows = append(rows, m.list.View())
	}

	rows = append(rows, theme.DimmedStyle.PaddingLeft(2).Render(m.pager.View()))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(listHeight(m.height)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.snapshot.Loaded:
		return style.Render("Loading tasks...")
	case m.snapshot.State.SearchTerm != "":
		return style.Render("No task on this page matches the search.")
	case !m.snapshot.State.StatusFilter.IsAll():
		return style.Render("No tasks with this status.\nPress f to change the filter.")
	default:
		return style.Render("No tasks yet.\n\nPress n to create one.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
	m.searchInput.Width = width - 4
}
