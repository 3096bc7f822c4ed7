package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/devserver"
	"github.com/nhle/taskflow/internal/model"
)

// TestServer is a dev server bound to a loopback port.
type TestServer struct {
	*devserver.Server
	HTTP *httptest.Server
}

// BaseURL returns the API root (including the /api prefix).
func (s *TestServer) BaseURL() string {
	return s.HTTP.URL + "/api"
}

// NewTestServer starts an in-memory dev server that is closed when the
// test completes.
func NewTestServer(t *testing.T, opts ...devserver.Option) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	srv := devserver.New(nil, opts...)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	return &TestServer{Server: srv, HTTP: hs}
}

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

// LoginClient registers username on the server, logs in, and returns an
// API client carrying the issued token.
func (s *TestServer) LoginClient(t *testing.T, username string) *api.Client {
	t.Helper()

	ctx := context.Background()
	anon := api.NewClient(s.BaseURL(), nil)

	creds := map[string]string{"username": username, "password": "secret-pass", "role": model.DefaultRole}
	if err := anon.Post(ctx, "/auth/register", creds, nil); err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := anon.Post(ctx, "/auth/login", creds, &resp); err != nil {
		t.Fatalf("logging in %s: %v", username, err)
	}

	return api.NewClient(s.BaseURL(), staticToken(resp.Token))
}

// SeedTasks creates tasks through client, returning them as stored.
func SeedTasks(t *testing.T, client *api.Client, tasks ...model.Task) []model.Task {
	t.Helper()

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		var created model.Task
		if err := client.Post(context.Background(), "/tasks", task, &created); err != nil {
			t.Fatalf("seeding task %q: %v", task.Title, err)
		}
		out = append(out, created)
	}
	return out
}
