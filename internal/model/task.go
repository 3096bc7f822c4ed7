package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is the opaque, server-assigned task identifier. The remote service
// may encode it as a JSON number or string; both are accepted and
// numeric ids are written back as numbers.
type ID string

// MarshalJSON writes numeric ids as JSON numbers and everything else as
// strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if isNumeric(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding task id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// timestampLayouts are tried in order when decoding server timestamps.
// The service emits zone-less local date-times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// wireLayout is the layout used for timestamps created on the client.
const wireLayout = "2006-01-02T15:04:05"

// Timestamp is a server date-time that keeps its original textual form so
// that exports and round trips reproduce it exactly.
type Timestamp struct {
	t   time.Time
	raw string
}

// NewTimestamp wraps t using the service's zone-less wire layout.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, raw: t.Format(wireLayout)}
}

// ParseTimestamp parses any of the accepted server layouts.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return Timestamp{t: t, raw: raw}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", raw)
}

// Time returns the parsed instant (zero if the raw value was unparseable).
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether no instant is known.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// String returns the value exactly as received.
func (ts Timestamp) String() string { return ts.raw }

// Date returns the calendar date portion, for compact display.
func (ts Timestamp) Date() string {
	if ts.t.IsZero() {
		return ts.raw
	}
	return ts.t.Format("2006-01-02")
}

// MarshalJSON writes the original textual form.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.raw)
}

// UnmarshalJSON keeps the raw text even when it cannot be parsed.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		*ts = Timestamp{raw: raw}
		return nil
	}
	*ts = parsed
	return nil
}

// Task is the client's cached copy of a server-owned task record.
type Task struct {
	ID          ID         `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *Timestamp `json:"dueDate"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	ModifiedBy  string     `json:"modifiedBy,omitempty"`
	CreatedOn   *Timestamp `json:"createdOn,omitempty"`
	ModifiedOn  *Timestamp `json:"modifiedOn,omitempty"`
}

// IsOverdue reports whether the task has a deadline before now and is not
// yet completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.DueDate.IsZero() || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Time().Before(now)
}

// ReadOnly reports whether the task may only be viewed, not edited.
func (t Task) ReadOnly() bool {
	return t.Status == StatusDone || t.Status == StatusCanceled
}

// TaskDraft holds the user-editable fields of a task, as submitted from a
// create or edit form.
type TaskDraft struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *Timestamp
}

// DraftFrom copies the editable fields of t.
func DraftFrom(t Task) TaskDraft {
	return TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// Validate checks the draft without touching the network.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if d.Status != "" && !d.Status.Valid() {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", d.Status),
		}
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return &ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("unknown priority %q", d.Priority),
		}
	}
	return nil
}
