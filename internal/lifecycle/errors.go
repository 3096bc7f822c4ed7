package lifecycle

import "errors"

var (
	// ErrNotCyclable is returned when a task's status is not part of the
	// cycle (Canceled or an unknown value).
	ErrNotCyclable = errors.New("status cannot be cycled")

	// ErrReadOnly is returned when editing a Done or Canceled task.
	ErrReadOnly = errors.New("task is read-only")

	// ErrDeleteForbidden is returned when deleting a Done task.
	ErrDeleteForbidden = errors.New("completed tasks cannot be deleted")

	// ErrRestartNotAllowed is returned when a task is not Canceled, already
	// carries the restart marker, or was already restarted.
	ErrRestartNotAllowed = errors.New("task cannot be restarted")

	// ErrNothingPending is returned by Confirm when no action awaits
	// confirmation.
	ErrNothingPending = errors.New("no action awaiting confirmation")
)
