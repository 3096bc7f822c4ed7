package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/taskflow/internal/model"
)

// NetworkError indicates the request never produced an HTTP response
// (connection refused, DNS failure, timeout, cancellation).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is returned for non-2xx responses and for 2xx responses whose
// body is not valid JSON. Message and Details are populated only when the
// server sent a structured error body.
type HTTPError struct {
	Status  int
	Message string
	Details string
	Body    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	if e.Details == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s (%s)", e.Status, e.Message, e.Details)
}

// Structured reports whether the server supplied a readable message.
func (e *HTTPError) Structured() bool { return e.Message != "" }

// IsHTTPError reports whether err (or any error in its chain) is an
// HTTPError, returning it.
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	ok := errors.As(err, &httpErr)
	return httpErr, ok
}

// IsNetworkError reports whether err (or any error in its chain) is a
// NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// errorBody is the shape of structured error responses. Servers use
// either "message" or "error"; details may be a string or a list.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// newHTTPError builds an HTTPError from a response body.
func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{Status: status, Body: string(body)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return e
	}
	e.Message = eb.Message
	if e.Message == "" {
		e.Message = eb.Error
	}
	e.Details = decodeDetails(eb.Details)
	return e
}

func decodeDetails(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	var fields map[string]string
	if json.Unmarshal(raw, &fields) == nil {
		parts := make([]string, 0, len(fields))
		for k, v := range fields {
			parts = append(parts, k+": "+v)
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// userMessager is implemented by errors that carry their own
// human-readable text.
type userMessager interface {
	UserMessage() string
}

// UserMessage renders err as a single line for the user. Structured
// server errors yield "message (details)"; anything else yields fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}

	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}

	if httpErr, ok := IsHTTPError(err); ok && httpErr.Structured() {
		if httpErr.Details != "" {
			return fmt.Sprintf("%s (%s)", httpErr.Message, httpErr.Details)
		}
		return httpErr.Message
	}

	if IsNetworkError(err) {
		return fallback + ": server unreachable"
	}

	return fallback
}
