package model

import "fmt"

// Status is the lifecycle state of a task. Values match the wire format
// of the remote task service.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusOnHold     Status = "On Hold"
	StatusDone       Status = "Done"
	StatusCanceled   Status = "Canceled"
)

// AllStatuses lists every valid status in display order.
var AllStatuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusInReview,
	StatusOnHold,
	StatusDone,
	StatusCanceled,
}

// statusCycle is the fixed rotation used by "advance status".
// Canceled is deliberately absent.
var statusCycle = []Status{
	StatusOpen,
	StatusInProgress,
	StatusInReview,
	StatusOnHold,
	StatusDone,
}

// Cycle returns a copy of the status rotation order.
func Cycle() []Status {
	out := make([]Status, len(statusCycle))
	copy(out, statusCycle)
	return out
}

// NextStatus returns the status that follows s in the cycle. The second
// return value is false when s is not part of the cycle (Canceled or an
// unknown value); callers must treat that as "not cyclable".
func NextStatus(s Status) (Status, bool) {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)], true
		}
	}
	return "", false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether in-place cycling is disallowed for s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// Label returns the console label shown for the status.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "PENDING"
	case StatusInProgress:
		return "RUNNING"
	case StatusInReview:
		return "REVIEW"
	case StatusOnHold:
		return "ON HOLD"
	case StatusDone:
		return "COMPLETED"
	case StatusCanceled:
		return "CANCELED"
	default:
		return string(s)
	}
}

// ParseStatus converts user input into a Status. Matching is case
// insensitive and accepts snake/kebab forms such as "in_progress".
func ParseStatus(raw string) (Status, error) {
	key := normalizeEnum(raw)
	for _, st := range AllStatuses {
		if normalizeEnum(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// StatusFilter selects which statuses the server returns. The zero value
// and FilterAll both mean "no filter".
type StatusFilter string

// FilterAll is the wire value for an unfiltered listing.
const FilterAll StatusFilter = "All"

// FilterFor returns the filter that selects only tasks with status s.
func FilterFor(s Status) StatusFilter {
	return StatusFilter(s)
}

// ParseStatusFilter accepts "all" (any case) or any status name.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	if raw == "" || normalizeEnum(raw) == "all" {
		return FilterAll, nil
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	return FilterFor(st), nil
}

// Param returns the value sent in the status query parameter.
func (f StatusFilter) Param() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}

// IsAll reports whether the filter matches every status.
func (f StatusFilter) IsAll() bool {
	return f == "" || f == FilterAll
}
