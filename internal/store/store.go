package store

import (
	"errors"
	"fmt"

	"github.com/nhle/taskflow/internal/model"
)

// ErrNotFound is returned by Get when the key has never been set or has
// been deleted.
var ErrNotFound = errors.New("key not found")

// Store is a durable string key-value store. Values survive process
// restarts. Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// SecretKeys are routed to the credential store by Routed.
var SecretKeys = []string{model.KeyToken, model.KeyUsername, model.KeyRole, model.KeyMailboxPassword}

// Routed sends secret keys to one store and everything else to another,
// so that the bearer token never lands in the preferences database.
type Routed struct {
	secrets Store
	prefs   Store
	secret  map[string]bool
}

// NewRouted returns a store that keeps SecretKeys in secrets and all other
// keys in prefs.
func NewRouted(secrets, prefs Store) *Routed {
	secret := make(map[string]bool, len(SecretKeys))
	for _, k := range SecretKeys {
		secret[k] = true
	}
	return &Routed{secrets: secrets, prefs: prefs, secret: secret}
}

func (r *Routed) target(key string) Store {
	if r.secret[key] {
		return r.secrets
	}
	return r.prefs
}

// Get reads key from the store that owns it.
func (r *Routed) Get(key string) (string, error) {
	return r.target(key).Get(key)
}

// Set writes key to the store that owns it.
func (r *Routed) Set(key, value string) error {
	if err := r.target(key).Set(key, value); err != nil {
		return fmt.Errorf("storing %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the store that owns it.
func (r *Routed) Delete(key string) error {
	if err := r.target(key).Delete(key); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}
