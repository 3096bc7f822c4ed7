// Package lifecycle applies the task rules: status cycling, edit and
// delete guards, restart cloning, and two-step confirmation. Every
// successful mutation is followed by a board refresh.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nhle/taskflow/internal/model"
)

// RestartMarker prefixes the title of a task cloned by Restart.
const RestartMarker = "(RESTARTED) "

// Gateway is the subset of tasks.Gateway used here.
type Gateway interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id model.ID) error
}

// Identity supplies the acting user recorded in audit fields.
type Identity interface {
	ActingUser() string
}

// Board is refreshed after each mutation and remembers restarted ids.
type Board interface {
	Refresh(ctx context.Context) error
	IsRestarted(id model.ID) bool
	MarkRestarted(id model.ID)
}

// Kind names an action awaiting confirmation.
type Kind int

const (
	KindDelete Kind = iota + 1
	KindRestart
)

func (k Kind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Confirmation is an action the user must confirm before it is sent.
type Confirmation struct {
	Kind Kind
	Task model.Task
}

// Prompt returns the question shown to the user.
func (c Confirmation) Prompt() string {
	switch c.Kind {
	case KindDelete:
		return fmt.Sprintf("Delete %q? This cannot be undone.", c.Task.Title)
	case KindRestart:
		return fmt.Sprintf("Restart %q as a new open task?", c.Task.Title)
	default:
		return ""
	}
}

// Service orchestrates task mutations.
type Service struct {
	gateway  Gateway
	identity Identity
	board    Board
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Confirmation
}

// NewService returns a Service. A nil logger discards output.
func NewService(gateway Gateway, identity Identity, board Board, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gateway: gateway, identity: identity, board: board, logger: logger}
}

// CanCycle reports whether the UI offers status cycling for t.
func CanCycle(t model.Task) bool {
	_, ok := model.NextStatus(t.Status)
	return ok && !t.Status.Terminal()
}

// CanEdit reports whether t's fields may be submitted.
func CanEdit(t model.Task) bool {
	return !t.ReadOnly()
}

// CanDelete reports whether t may be offered for deletion.
func CanDelete(t model.Task) bool {
	return t.Status != model.StatusDone
}

// CanRestart reports whether t may be cloned as a restart, given whether
// it was already restarted this session.
func CanRestart(t model.Task, restarted bool) bool {
	return t.Status == model.StatusCanceled &&
		!strings.HasPrefix(t.Title, RestartMarker) &&
		!restarted
}

// refresh reloads the board after a mutation that already succeeded.
func (s *Service) refresh(ctx context.Context) error {
	if err := s.board.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing tasks: %w", err)
	}
	return nil
}

// CycleStatus advances t to the next status in the cycle. Canceled and
// unknown statuses are rejected without a network call.
func (s *Service) CycleStatus(ctx context.Context, t model.Task) (model.Task, error) {
	next, ok := model.NextStatus(t.Status)
	if !ok {
		return model.Task{}, fmt.Errorf("cycling %q: %w", t.Status, ErrNotCyclable)
	}

	t.Status = next
	t.ModifiedBy = s.identity.ActingUser()

	updated, err := s.gateway.Update(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info("status cycled", "id", t.ID, "status", next)
	return updated, s.refresh(ctx)
}

// Create posts a new task from draft. Status defaults to Open and priority
// to MEDIUM.
func (s *Service) Create(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	user := s.identity.ActingUser()
	t := model.Task{
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority.OrDefault(),
		DueDate:     draft.DueDate,
		CreatedBy:   user,
		ModifiedBy:  user,
	}
	if t.Status == "" {
		t.Status = model.StatusOpen
	}

	created, err := s.gateway.Create(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	return created, s.refresh(ctx)
}

// Edit replaces the editable fields of t with draft. Read-only tasks and
// invalid drafts are rejected without a network call.
func (s *Service) Edit(ctx context.Context, t model.Task, draft model.TaskDraft) (model.Task, error) {
	if t.ReadOnly() {
		return model.Task{}, fmt.Errorf("editing task %s: %w", t.ID, ErrReadOnly)
	}
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	t.Title = strings.TrimSpace(draft.Title)
	t.Description = draft.Description
	if draft.Status != "" {
		t.Status = draft.Status
	}
	t.Priority = draft.Priority.OrDefault()
	t.DueDate = draft.DueDate
	t.ModifiedBy = s.identity.ActingUser()

	updated, err := s.gateway.Update(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	return updated, s.refresh(ctx)
}

// RequestDelete stages deletion of t. Nothing is sent until Confirm.
func (s *Service) RequestDelete(t model.Task) (Confirmation, error) {
	if !CanDelete(t) {
		return Confirmation{}, fmt.Errorf("deleting task %s: %w", t.ID, ErrDeleteForbidden)
	}
	return s.stage(Confirmation{Kind: KindDelete, Task: t}), nil
}

// RequestRestart stages a restart clone of t. Nothing is sent until
// Confirm.
func (s *Service) RequestRestart(t model.Task) (Confirmation, error) {
	if !CanRestart(t, s.board.IsRestarted(t.ID)) {
		return Confirmation{}, fmt.Errorf("restarting task %s: %w", t.ID, ErrRestartNotAllowed)
	}
	return s.stage(Confirmation{Kind: KindRestart, Task: t}), nil
}

func (s *Service) stage(c Confirmation) Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &c
	return c
}

// Pending returns the staged action, if any.
func (s *Service) Pending() (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Confirmation{}, false
	}
	return *s.pending, true
}

// Cancel drops the staged action.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Confirm performs the staged action. The staged action is cleared
// whether or not the call succeeds.
func (s *Service) Confirm(ctx context.Context) error {
	s.mu.Lock()
	c := s.pending
	s.pending = nil
	s.mu.Unlock()

	if c == nil {
		return ErrNothingPending
	}

	switch c.Kind {
	case KindDelete:
		return s.delete(ctx, c.Task)
	case KindRestart:
		return s.restart(ctx, c.Task)
	default:
		return fmt.Errorf("confirming %s: %w", c.Kind, ErrNothingPending)
	}
}

func (s *Service) delete(ctx context.Context, t model.Task) error {
	if err := s.gateway.Delete(ctx, t.ID); err != nil {
		return err
	}
	s.logger.Info("task deleted", "id", t.ID)
	return s.refresh(ctx)
}

// restart creates a new Open task cloned from t. t itself is not touched.
func (s *Service) restart(ctx context.Context, t model.Task) error {
	user := s.identity.ActingUser()
	clone := model.Task{
		Title:       RestartMarker + t.Title,
		Description: t.Description,
		Status:      model.StatusOpen,
		Priority:    t.Priority.OrDefault(),
		DueDate:     t.DueDate,
		CreatedBy:   user,
		ModifiedBy:  user,
	}

	created, err := s.gateway.Create(ctx, clone)
	if err != nil {
		return err
	}
	s.board.MarkRestarted(t.ID)
	s.logger.Info("task restarted", "from", t.ID, "id", created.ID)
	return s.refresh(ctx)
}
