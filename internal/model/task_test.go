package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_DecodesServerPayload(t *testing.T) {
	payload := `{
		"id": 7,
		"title": "Fix bug",
		"description": null,
		"status": "In Review",
		"priority": "HIGH",
		"dueDate": "2024-03-01T09:30:00",
		"createdBy": "bob",
		"modifiedBy": "alice",
		"createdOn": "2024-01-01",
		"modifiedOn": "2024-01-02T10:00:00.123"
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(payload), &task))

	assert.Equal(t, ID("7"), task.ID)
	assert.Equal(t, "", task.Description)
	assert.Equal(t, StatusInReview, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-03-01T09:30:00", task.DueDate.String())
	assert.Equal(t, 9, task.DueDate.Time().Hour())
	require.NotNil(t, task.CreatedOn)
	assert.Equal(t, "2024-01-01", task.CreatedOn.String())
}

func TestTask_EncodesNumericIDAsNumber(t *testing.T) {
	data, err := json.Marshal(Task{ID: "42", Title: "x", Status: StatusOpen})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(42), raw["id"])
	assert.Nil(t, raw["dueDate"])
}

func TestTask_OmitsEmptyIDOnCreate(t *testing.T) {
	data, err := json.Marshal(Task{Title: "new"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	_, present := raw["id"]
	assert.False(t, present)
}

func TestID_AcceptsStringIDs(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a-b-c"}`), &task))
	assert.Equal(t, ID("a-b-c"), task.ID)

	data, err := json.Marshal(task.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `"a-b-c"`, string(data))
}

func TestTimestamp_KeepsUnparseableRaw(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
	assert.True(t, ts.IsZero())
	assert.Equal(t, "next tuesday", ts.String())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	past := NewTimestamp(now.Add(-time.Hour))
	future := NewTimestamp(now.Add(time.Hour))

	assert.True(t, Task{Status: StatusOpen, DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{Status: StatusDone, DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{Status: StatusOpen, DueDate: &future}.IsOverdue(now))
	assert.False(t, Task{Status: StatusOpen}.IsOverdue(now))
}

func TestTaskDraft_Validate(t *testing.T) {
	err := TaskDraft{Title: "   "}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	err = TaskDraft{Title: "ok", Status: "Archived"}.Validate()
	assert.True(t, IsValidationError(err))

	err = TaskDraft{Title: "ok", Priority: "URGENT"}.Validate()
	assert.True(t, IsValidationError(err))

	assert.NoError(t, TaskDraft{Title: "ok"}.Validate())
	assert.NoError(t, TaskDraft{Title: "ok", Status: StatusCanceled, Priority: PriorityLow}.Validate())
}

func TestThemeMode(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeLight, ThemeMode("").OrDefault())
	assert.Equal(t, ThemeLight, ThemeMode("sepia").OrDefault())
}
