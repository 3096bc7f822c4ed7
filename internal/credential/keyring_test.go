package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/store"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get("token")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set("token", "secret"))
	v, err := s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	require.NoError(t, s.Delete("token"))
	_, err = s.Get("token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_DeleteMissingKey(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))
	assert.NoError(t, s.Delete("never-set"))
}

func TestOpen_FileBackend(t *testing.T) {
	ring, err := Open(Options{FileDir: t.TempDir(), Backend: string(keyring.FileBackend)})
	require.NoError(t, err)

	s := NewStore(ring)
	require.NoError(t, s.Set("username", "alice"))
	v, err := s.Get("username")
	require.NoError(t, err)
	assert.Equal(t, "alice", v)
}
