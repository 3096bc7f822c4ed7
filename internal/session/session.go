// Package session reads and writes the persisted identity of the local
// user and the theme preference.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

// Provider exposes the session stored in a key-value store. Every read
// goes to the store, so a login or logout performed elsewhere is visible
// immediately.
type Provider struct {
	kv store.Store
}

// NewProvider returns a Provider backed by kv.
func NewProvider(kv store.Store) *Provider {
	return &Provider{kv: kv}
}

func (p *Provider) get(key string) (string, error) {
	v, err := p.kv.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Current returns the stored session. The second result is false when no
// token is stored.
func (p *Provider) Current() (model.Session, bool, error) {
	token, err := p.get(model.KeyToken)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("reading token: %w", err)
	}
	username, err := p.get(model.KeyUsername)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("reading username: %w", err)
	}
	role, err := p.get(model.KeyRole)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("reading role: %w", err)
	}

	s := model.Session{Token: token, Username: username, Role: role}
	return s, token != "", nil
}

// Token returns the bearer token, or "" when logged out.
func (p *Provider) Token() (string, error) {
	return p.get(model.KeyToken)
}

// ActingUser returns the stored username, or SYSTEM when none is stored
// or it cannot be read.
func (p *Provider) ActingUser() string {
	name, err := p.get(model.KeyUsername)
	if err != nil || strings.TrimSpace(name) == "" {
		return model.SystemUser
	}
	return name
}

// Save persists a session after a successful login. An empty role is
// stored as the default role.
func (p *Provider) Save(s model.Session) error {
	role := s.Role
	if role == "" {
		role = model.DefaultRole
	}
	if err := p.kv.Set(model.KeyToken, s.Token); err != nil {
		return err
	}
	if err := p.kv.Set(model.KeyUsername, s.Username); err != nil {
		return err
	}
	return p.kv.Set(model.KeyRole, role)
}

// Clear removes every session key. All keys are attempted even if one
// fails; the first error is returned.
func (p *Provider) Clear() error {
	var first error
	for _, key := range []string{model.KeyToken, model.KeyUsername, model.KeyRole} {
		if err := p.kv.Delete(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Rename changes the locally stored display name.
func (p *Provider) Rename(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &model.ValidationError{Field: "username", Message: "username is required"}
	}
	return p.kv.Set(model.KeyUsername, username)
}

// ThemeMode returns the stored theme, defaulting to light.
func (p *Provider) ThemeMode() model.ThemeMode {
	v, err := p.get(model.KeyThemeMode)
	if err != nil {
		return model.ThemeLight
	}
	return model.ThemeMode(v).OrDefault()
}

// SetThemeMode persists the theme.
func (p *Provider) SetThemeMode(mode model.ThemeMode) error {
	return p.kv.Set(model.KeyThemeMode, string(mode.OrDefault()))
}

// ToggleTheme flips and persists the theme, returning the new mode.
func (p *Provider) ToggleTheme() (model.ThemeMode, error) {
	next := p.ThemeMode().Toggle()
	if err := p.SetThemeMode(next); err != nil {
		return p.ThemeMode(), err
	}
	return next, nil
}
