package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token() (string, error) { return "", errors.New("keyring locked") }

func TestClient_AttachesBearerWhenTokenPresent(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out map[string]bool
	c := NewClient(srv.URL, staticToken("abc"))
	require.NoError(t, c.Get(context.Background(), "/tasks", nil, &out))

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.True(t, out["ok"])
}

func TestClient_OmitsHeaderWithoutToken(t *testing.T) {
	for name, tokens := range map[string]TokenSource{
		"nil source":   nil,
		"empty token":  staticToken(""),
		"token failed": failingToken{},
	} {
		t.Run(name, func(t *testing.T) {
			var present bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, present = r.Header["Authorization"]
			}))
			defer srv.Close()

			require.NoError(t, NewClient(srv.URL, tokens).Get(context.Background(), "/x", nil, nil))
			assert.False(t, present)
		})
	}
}

func TestClient_EncodesQueryAndBody(t *testing.T) {
	var gotQuery url.Values
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	q := url.Values{"page": {"0"}, "status": {"In Progress"}}
	require.NoError(t, c.Get(context.Background(), "/tasks", q, nil))
	assert.Equal(t, "In Progress", gotQuery.Get("status"))

	var created model.Task
	require.NoError(t, c.Post(context.Background(), "/tasks", model.Task{Title: "x"}, &created))
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, model.ID("1"), created.ID)
}

func TestClient_StructuredErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Username taken","details":"choose another"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Post(context.Background(), "/auth/register", map[string]string{}, nil)
	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "Username taken (choose another)", UserMessage(err, "Registration failed"))
}

func TestClient_ErrorFieldAndListDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Bad input","details":["title blank","size too big"]}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Put(context.Background(), "/tasks/1", map[string]string{}, nil)
	assert.Equal(t, "Bad input (title blank; size too big)", UserMessage(err, "Update failed"))
}

func TestClient_UnstructuredErrorFallsBackToGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`Internal Server Error`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Delete(context.Background(), "/tasks/1")
	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.False(t, httpErr.Structured())
	assert.Equal(t, "Internal Server Error", httpErr.Body)
	assert.Equal(t, "Delete failed", UserMessage(err, "Delete failed"))
}

func TestClient_EmptyErrorBodyFallsBackToGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Get(context.Background(), "/tasks", nil, nil)
	assert.Equal(t, "Load failed", UserMessage(err, "Load failed"))
}

func TestClient_MalformedJSONIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [`))
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClient(srv.URL, nil).Get(context.Background(), "/tasks", nil, &out)
	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, httpErr.Status)
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := NewClient(srv.URL, nil).Get(context.Background(), "/tasks", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, "Load failed: server unreachable", UserMessage(err, "Load failed"))
}

func TestClient_NeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Get(context.Background(), "/tasks", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, nil, WithTimeout(50*time.Millisecond)).
		Get(context.Background(), "/slow", nil, nil)
	assert.True(t, IsNetworkError(err))
}

func TestUserMessage_ValidationError(t *testing.T) {
	err := &model.ValidationError{Field: "title", Message: "title is required"}
	assert.Equal(t, "title is required", UserMessage(err, "Save failed"))
	assert.Equal(t, "", UserMessage(nil, "Save failed"))
}
