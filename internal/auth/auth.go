// Package auth talks to the identity endpoints and keeps the local
// session in step with them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/model"
)

// ErrTokenNotIssued is wrapped by AuthError when the server accepted the
// credentials but returned no token.
var ErrTokenNotIssued = errors.New("token not issued")

// AuthError indicates a rejected login or registration.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth error: " + e.Message
	}
	return fmt.Sprintf("auth error: %s: %v", e.Message, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user.
func (e *AuthError) UserMessage() string { return e.Message }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Transport is the subset of api.Client used here.
type Transport interface {
	Post(ctx context.Context, path string, body, result any) error
}

// SessionStore persists and clears the local session.
type SessionStore interface {
	Save(s model.Session) error
	Clear() error
}

// Gateway implements login, registration and logout.
type Gateway struct {
	transport Transport
	sessions  SessionStore
	logger    *slog.Logger
}

// NewGateway returns a Gateway. A nil logger discards output.
func NewGateway(transport Transport, sessions SessionStore, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{transport: transport, sessions: sessions, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login authenticates and stores the resulting session. Nothing is stored
// unless the server issues a token.
func (g *Gateway) Login(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Session{}, &model.ValidationError{Message: "username and password are required"}
	}

	var resp loginResponse
	err := g.transport.Post(ctx, "/auth/login", credentials{Username: username, Password: password}, &resp)
	if err != nil {
		g.logger.Info("login rejected", "username", username, "error", err)
		return model.Session{}, &AuthError{
			Message: api.UserMessage(err, "Login failed: invalid username or password"),
			Err:     err,
		}
	}

	if resp.Token == "" {
		g.logger.Warn("login succeeded without a token", "username", username)
		return model.Session{}, &AuthError{
			Message: "Authorization failed: security token not issued",
			Err:     ErrTokenNotIssued,
		}
	}

	s := model.Session{Token: resp.Token, Username: resp.Username, Role: resp.Role}
	if s.Username == "" {
		s.Username = username
	}
	if s.Role == "" {
		s.Role = model.DefaultRole
	}

	if err := g.sessions.Save(s); err != nil {
		return model.Session{}, fmt.Errorf("saving session: %w", err)
	}

	g.logger.Info("logged in", "username", s.Username, "role", s.Role)
	return s, nil
}

// Register creates a new identity with the default role. A password that
// differs from its confirmation is rejected before any network call.
func (g *Gateway) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return &model.ValidationError{Message: "username and password are required"}
	}
	if password != confirm {
		return &model.ValidationError{Field: "confirm", Message: "passwords do not match"}
	}

	body := credentials{Username: username, Password: password, Role: model.DefaultRole}
	if err := g.transport.Post(ctx, "/auth/register", body, nil); err != nil {
		g.logger.Info("registration rejected", "username", username, "error", err)
		return &AuthError{
			Message: api.UserMessage(err, "Registration failed"),
			Err:     err,
		}
	}

	g.logger.Info("registered", "username", username)
	return nil
}

// Logout clears the local session. No server call is made.
func (g *Gateway) Logout() error {
	if err := g.sessions.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	g.logger.Info("logged out")
	return nil
}
