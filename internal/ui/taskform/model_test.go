package taskform

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

func TestStartCreate_ResetsFields(t *testing.T) {
	m := New(80, 24)
	m.fb.title = "leftover"
	m.StartCreate()

	assert.Equal(t, ModeCreate, m.Mode())
	assert.Empty(t, m.fb.title)
	assert.Equal(t, model.PriorityMedium, m.fb.priority)
	assert.Contains(t, m.View(), "New Task")
}

func TestDraft_TrimsTitleAndDefaultsStatusToOpen(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "  Write docs  "
	m.fb.priority = model.PriorityHigh
	m.fb.dueDate = "2024-07-01"

	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Equal(t, "Write docs", draft.Title)
	assert.Equal(t, model.PriorityHigh, draft.Priority)
	assert.Equal(t, model.StatusOpen, draft.Status)
	require.NotNil(t, draft.DueDate)
	assert.Equal(t, "2024-07-01T00:00:00", draft.DueDate.String())
}

func TestDraft_RejectsBlankTitleAndBadDate(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()

	m.fb.title = "   "
	_, err := m.Draft()
	assert.True(t, model.IsValidationError(err))

	m.fb.title = "ok"
	m.fb.dueDate = "01/07/2024"
	_, err = m.Draft()
	assert.True(t, model.IsValidationError(err))
}

func TestStartEdit_PrefillsAndKeepsOriginalDueTime(t *testing.T) {
	due, err := model.ParseTimestamp("2024-03-01T09:30:00")
	require.NoError(t, err)
	task := model.Task{
		ID:          "7",
		Title:       "Fix bug",
		Description: "steps",
		Status:      model.StatusInReview,
		Priority:    model.PriorityLow,
		DueDate:     &due,
	}

	m := New(80, 24)
	m.StartEdit(task)
	assert.Equal(t, ModeEdit, m.Mode())
	assert.Equal(t, "2024-03-01", m.fb.dueDate)

	m.fb.status = model.StatusOnHold
	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnHold, draft.Status)
	assert.Equal(t, "2024-03-01T09:30:00", draft.DueDate.String())

	m.fb.dueDate = ""
	draft, err = m.Draft()
	require.NoError(t, err)
	assert.Nil(t, draft.DueDate)
}

func TestStartEdit_ReadOnlyTasksOpenInViewMode(t *testing.T) {
	for _, s := range []model.Status{model.StatusDone, model.StatusCanceled} {
		m := New(80, 24)
		m.StartEdit(model.Task{ID: "1", Title: "finished", Status: s, CreatedBy: "bob"})

		assert.Equal(t, ModeView, m.Mode(), s)
		view := m.View()
		assert.Contains(t, view, "read only")
		assert.Contains(t, view, "bob")
	}
}

func TestUpdate_EscCancels(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestStartCreate_ChosenStatusIsSubmitted(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	assert.Equal(t, model.StatusOpen, m.fb.status)

	m.fb.title = "Pair on review"
	m.fb.status = model.StatusInProgress

	cmd, err := m.submit()
	require.NoError(t, err)
	msg, ok := cmd().(SubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, ModeCreate, msg.Mode)
	assert.Equal(t, model.StatusInProgress, msg.Draft.Status)
}

func TestSubmit_InvalidDraftKeepsFormOpen(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "Plan"
	m.fb.dueDate = "01/07/2024"
	m.form.State = huh.StateCompleted

	m, _ = m.Update(nil)

	assert.Equal(t, "invalid date format, use YYYY-MM-DD", m.Failure())
	assert.Contains(t, m.View(), "invalid date format, use YYYY-MM-DD")
	assert.Equal(t, "01/07/2024", m.fb.dueDate)
	assert.NotNil(t, m.form)

	m.StartCreate()
	assert.Empty(t, m.Failure())
}

func TestSubmit_CarriesEditedTask(t *testing.T) {
	task := model.Task{ID: "3", Title: "old", Status: model.StatusOpen}
	m := New(80, 24)
	m.StartEdit(task)
	m.fb.title = "new"

	cmd, err := m.submit()
	require.NoError(t, err)
	msg, ok := cmd().(SubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, ModeEdit, msg.Mode)
	assert.Equal(t, task, msg.Task)
	assert.Equal(t, "new", msg.Draft.Title)
}

func TestValidateOptionalDate(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate(time.Now().Format(dateLayout)))
	assert.Error(t, validateOptionalDate("tomorrow"))
}
