package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/tasks"
)

// Fetcher loads one page of tasks.
type Fetcher interface {
	GetAll(ctx context.Context, q tasks.Query) (tasks.Page, error)
}

// Snapshot is a consistent copy of the board.
type Snapshot struct {
	State   State
	Tasks   []model.Task
	Visible []model.Task
	Total   int
	Loaded  bool
}

// Board owns the view state and the currently loaded page. Only the
// response to the most recent Refresh is applied; earlier responses that
// arrive late are dropped.
type Board struct {
	mu        sync.Mutex
	fetcher   Fetcher
	logger    *slog.Logger
	state     State
	tasks     []model.Task
	total     int
	loaded    bool
	seq       uint64
	restarted map[model.ID]bool
}

// NewBoard returns an empty board. A nil logger discards output.
func NewBoard(fetcher Fetcher, pageSize int, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Board{
		fetcher:   fetcher,
		logger:    logger,
		state:     NewState(pageSize),
		restarted: make(map[model.ID]bool),
	}
}

// Refresh fetches the page selected by the current state. On failure the
// previously loaded page is kept. A response superseded by a newer
// Refresh is discarded together with its error.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	q := tasks.Query{Page: b.state.Page, Size: b.state.PageSize, Status: b.state.StatusFilter}
	b.mu.Unlock()

	page, err := b.fetcher.GetAll(ctx, q)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		b.logger.Debug("discarding stale page", "seq", seq, "latest", b.seq)
		return nil
	}
	if err != nil {
		return err
	}

	b.tasks = page.Content
	b.total = page.TotalElements
	b.loaded = true
	return nil
}

// Snapshot returns the current state and loaded page.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	loaded := make([]model.Task, len(b.tasks))
	copy(loaded, b.tasks)

	return Snapshot{
		State:   b.state,
		Tasks:   loaded,
		Visible: Visible(loaded, b.state.SearchTerm),
		Total:   b.total,
		Loaded:  b.loaded,
	}
}

// Update applies fn to the view state. The caller refreshes afterwards
// when the change affects the server query.
func (b *Board) Update(fn func(*State)) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
	return b.state
}

// NextPage advances the page if the last known total allows it.
func (b *Board) NextPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.NextPage(b.total)
}

// PrevPage moves back one page.
func (b *Board) PrevPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.PrevPage()
}

// MarkRestarted records that a restart clone was created for id.
func (b *Board) MarkRestarted(id model.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restarted[id] = true
}

// IsRestarted reports whether id was restarted in this session.
func (b *Board) IsRestarted(id model.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.restarted[id]
}

// Reset drops the loaded page, the restart marks and any in-flight
// response. The page size is kept; filter, search and page start over.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.state = NewState(b.state.PageSize)
	b.tasks = nil
	b.total = 0
	b.loaded = false
	b.restarted = make(map[model.ID]bool)
}
