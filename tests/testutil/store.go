package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestCredentials returns a credential store backed by an in-memory
// keyring.
func NewTestCredentials(t *testing.T) *credential.Store {
	t.Helper()
	return credential.NewStore(keyring.NewArrayKeyring(nil))
}

// NewTestKV returns the routed store used by the application, backed by
// in-memory components.
func NewTestKV(t *testing.T) *store.Routed {
	t.Helper()
	return store.NewRouted(NewTestCredentials(t), NewTestStore(t))
}
