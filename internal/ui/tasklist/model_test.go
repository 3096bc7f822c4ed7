package tasklist

import (
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/viewstate"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func snapshot(term string, total int, tasks ...model.Task) viewstate.Snapshot {
	st := viewstate.NewState(10)
	st.SetSearchTerm(term)
	return viewstate.Snapshot{
		State:   st,
		Tasks:   tasks,
		Visible: viewstate.Visible(tasks, term),
		Total:   total,
		Loaded:  true,
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_SelectEmitsSelectedTask(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetSnapshot(snapshot("", 2,
		model.Task{ID: "1", Title: "first", Status: model.StatusOpen},
		model.Task{ID: "2", Title: "second", Status: model.StatusOpen},
	), now, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	got, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, model.ID("2"), got.ID)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedTaskMsg{Task: got}, cmd())
}

func TestModel_EmptyListSelectsNothing(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetSnapshot(snapshot("", 0), now, nil)

	_, ok := m.SelectedTask()
	assert.False(t, ok)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No tasks yet")
}

func TestModel_SearchEmitsTermOnEveryEdit(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)

	m, _ = m.Update(runeKey("/"))
	require.True(t, m.Searching())

	m, cmd := m.Update(runeKey("b"))
	require.NotNil(t, cmd)
	assert.Equal(t, SearchChangedMsg{Term: "b"}, firstSearch(cmd))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())

	m, _ = m.Update(runeKey("/"))
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Searching())
	assert.Equal(t, SearchChangedMsg{Term: ""}, cmd())
}

func TestModel_RendersMarkers(t *testing.T) {
	past := model.NewTimestamp(now.Add(-48 * time.Hour))

	m := New(keys.DefaultKeyMap(), 120, 20)
	m.SetSnapshot(snapshot("", 2,
		model.Task{ID: "1", Title: "late", Status: model.StatusInProgress, DueDate: &past},
		model.Task{ID: "2", Title: "dropped", Status: model.StatusCanceled},
	), now, func(id model.ID) bool { return id == "2" })

	view := m.View()
	assert.Contains(t, view, "OVERDUE")
	assert.Contains(t, view, "RUNNING")
	assert.Contains(t, view, "(restarted)")
	assert.Contains(t, view, "page 1 of 1")
}

func TestModel_SummaryReportsSearchNarrowing(t *testing.T) {
	tasks := make([]model.Task, 0, 10)
	for i := 0; i < 10; i++ {
		title := "chore"
		if i < 2 {
			title = "bug fix"
		}
		tasks = append(tasks, model.Task{ID: model.ID(strconv.Itoa(i)), Title: title, Status: model.StatusOpen})
	}

	m := New(keys.DefaultKeyMap(), 120, 30)
	m.SetSnapshot(snapshot("bug", 50, tasks...), now, nil)

	assert.Equal(t, `status: All · 10 per page · 50 total · search "bug" (2 on page)`, m.FilterSummary())
}

// firstSearch runs cmd, expanding a batch, until a SearchChangedMsg
// turns up.
func firstSearch(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return msg
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if found, ok := c().(SearchChangedMsg); ok {
			return found
		}
	}
	return nil
}
