package devserver_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/devserver"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/tests/testutil"
)

type page struct {
	Content       []model.Task `json:"content"`
	TotalElements int          `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
}

func TestServer_RegisterRejectsDuplicateUsername(t *testing.T) {
	srv := testutil.NewTestServer(t)
	anon := api.NewClient(srv.BaseURL(), nil)
	ctx := context.Background()

	body := map[string]string{"username": "alice", "password": "pw1234"}
	require.NoError(t, anon.Post(ctx, "/auth/register", body, nil))

	err := anon.Post(ctx, "/auth/register", body, nil)
	httpErr, ok := api.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "Username already exists", httpErr.Message)
	assert.Equal(t, "choose a different username", httpErr.Details)
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	srv := testutil.NewTestServer(t)
	anon := api.NewClient(srv.BaseURL(), nil)
	ctx := context.Background()

	require.NoError(t, anon.Post(ctx, "/auth/register", map[string]string{"username": "bob", "password": "right"}, nil))

	err := anon.Post(ctx, "/auth/login", map[string]string{"username": "bob", "password": "wrong"}, nil)
	httpErr, ok := api.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
}

func TestServer_TasksRequireBearerToken(t *testing.T) {
	srv := testutil.NewTestServer(t)

	err := api.NewClient(srv.BaseURL(), nil).Get(context.Background(), "/tasks", nil, nil)
	httpErr, ok := api.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
}

func TestServer_CreateAssignsIDAndAudit(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	srv := testutil.NewTestServer(t, devserver.WithClock(func() time.Time { return fixed }))
	client := srv.LoginClient(t, "alice")

	created := testutil.SeedTasks(t, client, model.Task{Title: "  Write docs  "})[0]

	assert.Equal(t, model.ID("1"), created.ID)
	assert.Equal(t, "Write docs", created.Title)
	assert.Equal(t, model.StatusOpen, created.Status)
	assert.Equal(t, model.PriorityMedium, created.Priority)
	assert.Equal(t, "alice", created.CreatedBy)
	require.NotNil(t, created.CreatedOn)
	assert.Equal(t, "2024-01-02T03:04:05", created.CreatedOn.String())
}

func TestServer_ListPaginatesAndFilters(t *testing.T) {
	srv := testutil.NewTestServer(t)
	client := srv.LoginClient(t, "alice")

	var seed []model.Task
	for i := 0; i < 12; i++ {
		status := model.StatusOpen
		if i%3 == 0 {
			status = model.StatusDone
		}
		seed = append(seed, model.Task{Title: "t", Status: status})
	}
	testutil.SeedTasks(t, client, seed...)

	var p page
	q := url.Values{"page": {"1"}, "size": {"5"}, "status": {"All"}}
	require.NoError(t, client.Get(context.Background(), "/tasks", q, &p))
	assert.Equal(t, 12, p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)
	require.Len(t, p.Content, 5)
	assert.Equal(t, model.ID("6"), p.Content[0].ID)

	q = url.Values{"page": {"0"}, "size": {"10"}, "status": {"Done"}}
	require.NoError(t, client.Get(context.Background(), "/tasks", q, &p))
	assert.Equal(t, 4, p.TotalElements)
	for _, task := range p.Content {
		assert.Equal(t, model.StatusDone, task.Status)
	}
}

func TestServer_ListRejectsUnknownStatus(t *testing.T) {
	srv := testutil.NewTestServer(t)
	client := srv.LoginClient(t, "alice")

	err := client.Get(context.Background(), "/tasks", url.Values{"status": {"Archived"}}, nil)
	httpErr, ok := api.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestServer_UpdateAndDelete(t *testing.T) {
	srv := testutil.NewTestServer(t)
	client := srv.LoginClient(t, "alice")
	ctx := context.Background()

	created := testutil.SeedTasks(t, client, model.Task{Title: "a"})[0]
	created.Status = model.StatusInProgress
	created.ModifiedBy = "bob"

	var updated model.Task
	require.NoError(t, client.Put(ctx, "/tasks/"+string(created.ID), created, &updated))
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "bob", updated.ModifiedBy)
	assert.Equal(t, "alice", updated.CreatedBy)

	require.NoError(t, client.Delete(ctx, "/tasks/"+string(created.ID)))

	err := client.Delete(ctx, "/tasks/"+string(created.ID))
	httpErr, ok := api.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestServer_RejectsBlankTitle(t *testing.T) {
	srv := testutil.NewTestServer(t)
	client := srv.LoginClient(t, "alice")

	err := client.Post(context.Background(), "/tasks", model.Task{Title: "   "}, nil)
	assert.Equal(t, "Title is required (title must not be blank)", api.UserMessage(err, "Create failed"))
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	srv := devserver.New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
