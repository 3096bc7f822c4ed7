package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

type call struct {
	method string
	task   model.Task
	id     model.ID
}

type fakeGateway struct {
	calls []call
	err   error
}

func (f *fakeGateway) Create(_ context.Context, t model.Task) (model.Task, error) {
	f.calls = append(f.calls, call{method: "POST", task: t})
	if f.err != nil {
		return model.Task{}, f.err
	}
	t.ID = "100"
	return t, nil
}

func (f *fakeGateway) Update(_ context.Context, t model.Task) (model.Task, error) {
	f.calls = append(f.calls, call{method: "PUT", task: t, id: t.ID})
	if f.err != nil {
		return model.Task{}, f.err
	}
	return t, nil
}

func (f *fakeGateway) Delete(_ context.Context, id model.ID) error {
	f.calls = append(f.calls, call{method: "DELETE", id: id})
	return f.err
}

type fakeBoard struct {
	refreshes  int
	refreshErr error
	restarted  map[model.ID]bool
}

func (b *fakeBoard) Refresh(context.Context) error {
	b.refreshes++
	return b.refreshErr
}

func (b *fakeBoard) IsRestarted(id model.ID) bool { return b.restarted[id] }

func (b *fakeBoard) MarkRestarted(id model.ID) {
	if b.restarted == nil {
		b.restarted = map[model.ID]bool{}
	}
	b.restarted[id] = true
}

type user string

func (u user) ActingUser() string { return string(u) }

func newTestService() (*Service, *fakeGateway, *fakeBoard) {
	gw := &fakeGateway{}
	board := &fakeBoard{}
	return NewService(gw, user("alice"), board, nil), gw, board
}

func TestCycleStatus_AdvancesAndRefreshes(t *testing.T) {
	svc, gw, board := newTestService()

	updated, err := svc.CycleStatus(context.Background(), model.Task{ID: "1", Title: "a", Status: model.StatusOnHold, ModifiedBy: "bob"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDone, updated.Status)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "PUT", gw.calls[0].method)
	assert.Equal(t, model.StatusDone, gw.calls[0].task.Status)
	assert.Equal(t, "alice", gw.calls[0].task.ModifiedBy)
	assert.Equal(t, 1, board.refreshes)
}

func TestCycleStatus_DoneWrapsToOpen(t *testing.T) {
	svc, gw, _ := newTestService()

	updated, err := svc.CycleStatus(context.Background(), model.Task{ID: "1", Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, updated.Status)
	assert.Len(t, gw.calls, 1)
}

func TestCycleStatus_RejectsCanceled(t *testing.T) {
	svc, gw, board := newTestService()

	for _, st := range []model.Status{model.StatusCanceled, "", "Archived"} {
		_, err := svc.CycleStatus(context.Background(), model.Task{ID: "1", Status: st})
		assert.ErrorIs(t, err, ErrNotCyclable)
	}
	assert.Empty(t, gw.calls)
	assert.Zero(t, board.refreshes)
}

func TestCycleStatus_FailureLeavesBoardAlone(t *testing.T) {
	svc, gw, board := newTestService()
	gw.err = errors.New("503")

	_, err := svc.CycleStatus(context.Background(), model.Task{ID: "1", Status: model.StatusOpen})
	require.Error(t, err)
	assert.Zero(t, board.refreshes)
}

func TestCycleStatus_ReportsRefreshFailure(t *testing.T) {
	svc, _, board := newTestService()
	board.refreshErr = errors.New("offline")

	_, err := svc.CycleStatus(context.Background(), model.Task{ID: "1", Status: model.StatusOpen})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refreshing tasks")
}

func TestCanCycle(t *testing.T) {
	assert.True(t, CanCycle(model.Task{Status: model.StatusOpen}))
	assert.True(t, CanCycle(model.Task{Status: model.StatusOnHold}))
	assert.False(t, CanCycle(model.Task{Status: model.StatusDone}))
	assert.False(t, CanCycle(model.Task{Status: model.StatusCanceled}))
}

func TestCreate_EmptyTitleMakesNoCall(t *testing.T) {
	svc, gw, board := newTestService()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), model.TaskDraft{Title: title})
		assert.True(t, model.IsValidationError(err), "title %q", title)
	}
	assert.Empty(t, gw.calls)
	assert.Zero(t, board.refreshes)
}

func TestCreate_AppliesDefaultsAndAudit(t *testing.T) {
	svc, gw, board := newTestService()

	_, err := svc.Create(context.Background(), model.TaskDraft{Title: "  new  "})
	require.NoError(t, err)

	require.Len(t, gw.calls, 1)
	sent := gw.calls[0].task
	assert.Equal(t, "new", sent.Title)
	assert.Equal(t, model.StatusOpen, sent.Status)
	assert.Equal(t, model.PriorityMedium, sent.Priority)
	assert.Equal(t, "alice", sent.CreatedBy)
	assert.Equal(t, "alice", sent.ModifiedBy)
	assert.Equal(t, 1, board.refreshes)
}

func TestCreate_KeepsExplicitStatus(t *testing.T) {
	svc, gw, _ := newTestService()

	_, err := svc.Create(context.Background(), model.TaskDraft{Title: "x", Status: model.StatusInReview, Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInReview, gw.calls[0].task.Status)
	assert.Equal(t, model.PriorityHigh, gw.calls[0].task.Priority)
}

func TestEdit_RejectsReadOnlyAndEmptyTitle(t *testing.T) {
	svc, gw, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Edit(ctx, model.Task{ID: "1", Status: model.StatusDone}, model.TaskDraft{Title: "x"})
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = svc.Edit(ctx, model.Task{ID: "1", Status: model.StatusCanceled}, model.TaskDraft{Title: "x"})
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = svc.Edit(ctx, model.Task{ID: "1", Status: model.StatusOpen}, model.TaskDraft{Title: " "})
	assert.True(t, model.IsValidationError(err))

	assert.Empty(t, gw.calls)
}

func TestEdit_ReplacesFieldsKeepingIdentity(t *testing.T) {
	svc, gw, board := newTestService()
	original := model.Task{ID: "9", Title: "old", Status: model.StatusOpen, CreatedBy: "bob"}

	_, err := svc.Edit(context.Background(), original, model.TaskDraft{
		Title:       "new",
		Description: "desc",
		Status:      model.StatusCanceled,
		Priority:    model.PriorityLow,
	})
	require.NoError(t, err)

	sent := gw.calls[0].task
	assert.Equal(t, model.ID("9"), sent.ID)
	assert.Equal(t, "new", sent.Title)
	assert.Equal(t, model.StatusCanceled, sent.Status)
	assert.Equal(t, "bob", sent.CreatedBy)
	assert.Equal(t, "alice", sent.ModifiedBy)
	assert.Equal(t, 1, board.refreshes)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	svc, gw, board := newTestService()
	task := model.Task{ID: "3", Title: "old", Status: model.StatusOpen}

	c, err := svc.RequestDelete(task)
	require.NoError(t, err)
	assert.Equal(t, KindDelete, c.Kind)
	assert.Empty(t, gw.calls, "no call before confirmation")

	pending, ok := svc.Pending()
	require.True(t, ok)
	assert.Equal(t, model.ID("3"), pending.Task.ID)

	require.NoError(t, svc.Confirm(context.Background()))
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "DELETE", gw.calls[0].method)
	assert.Equal(t, model.ID("3"), gw.calls[0].id)
	assert.Equal(t, 1, board.refreshes)

	_, ok = svc.Pending()
	assert.False(t, ok)
}

func TestDelete_CancelSendsNothing(t *testing.T) {
	svc, gw, _ := newTestService()

	_, err := svc.RequestDelete(model.Task{ID: "3", Status: model.StatusOpen})
	require.NoError(t, err)
	svc.Cancel()

	assert.ErrorIs(t, svc.Confirm(context.Background()), ErrNothingPending)
	assert.Empty(t, gw.calls)
}

func TestDelete_DoneIsForbidden(t *testing.T) {
	svc, gw, _ := newTestService()

	_, err := svc.RequestDelete(model.Task{ID: "3", Status: model.StatusDone})
	assert.ErrorIs(t, err, ErrDeleteForbidden)
	_, ok := svc.Pending()
	assert.False(t, ok)
	assert.Empty(t, gw.calls)
}

func TestRestart_PostsCloneOnly(t *testing.T) {
	svc, gw, board := newTestService()
	due := model.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	canceled := model.Task{
		ID:          "7",
		Title:       "Fix bug",
		Description: "steps",
		Status:      model.StatusCanceled,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		CreatedBy:   "bob",
	}

	_, err := svc.RequestRestart(canceled)
	require.NoError(t, err)
	assert.Empty(t, gw.calls)

	require.NoError(t, svc.Confirm(context.Background()))

	require.Len(t, gw.calls, 1)
	c := gw.calls[0]
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, model.ID(""), c.task.ID)
	assert.Contains(t, c.task.Title, "Fix bug")
	assert.Equal(t, "(RESTARTED) Fix bug", c.task.Title)
	assert.Equal(t, model.StatusOpen, c.task.Status)
	assert.Equal(t, "steps", c.task.Description)
	assert.Equal(t, model.PriorityHigh, c.task.Priority)
	assert.Equal(t, &due, c.task.DueDate)
	assert.Equal(t, "alice", c.task.CreatedBy)
	assert.Nil(t, c.task.CreatedOn)

	for _, made := range gw.calls {
		assert.NotEqual(t, model.ID("7"), made.id)
	}
	assert.True(t, board.IsRestarted("7"))
	assert.Equal(t, 1, board.refreshes)
}

func TestRestart_Guards(t *testing.T) {
	svc, gw, board := newTestService()

	_, err := svc.RequestRestart(model.Task{ID: "1", Title: "x", Status: model.StatusOpen})
	assert.ErrorIs(t, err, ErrRestartNotAllowed)

	_, err = svc.RequestRestart(model.Task{ID: "2", Title: RestartMarker + "x", Status: model.StatusCanceled})
	assert.ErrorIs(t, err, ErrRestartNotAllowed)

	board.MarkRestarted("3")
	_, err = svc.RequestRestart(model.Task{ID: "3", Title: "x", Status: model.StatusCanceled})
	assert.ErrorIs(t, err, ErrRestartNotAllowed)

	assert.Empty(t, gw.calls)
}

func TestRestart_FailureDoesNotMarkRestarted(t *testing.T) {
	svc, gw, board := newTestService()
	gw.err = errors.New("500")

	_, err := svc.RequestRestart(model.Task{ID: "7", Title: "x", Status: model.StatusCanceled})
	require.NoError(t, err)
	assert.Error(t, svc.Confirm(context.Background()))
	assert.False(t, board.IsRestarted("7"))
}

func TestConfirmation_Prompt(t *testing.T) {
	c := Confirmation{Kind: KindDelete, Task: model.Task{Title: "a"}}
	assert.Contains(t, c.Prompt(), `"a"`)
	assert.Equal(t, "restart", KindRestart.String())
}
