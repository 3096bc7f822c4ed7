package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// ErrNothingToExport is returned when the loaded page is empty.
var ErrNothingToExport = errors.New("no tasks to export")

// Sink delivers a finished document and returns where it went.
type Sink interface {
	Deliver(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes documents into a directory.
type DirSink struct {
	Dir string
}

// Deliver writes data to Dir/name, creating Dir if needed.
func (s DirSink) Deliver(_ context.Context, name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export %s: %w", path, err)
	}
	return path, nil
}

// Result describes a completed export.
type Result struct {
	Name     string
	Location string
	Rows     int
}

// Exporter renders and delivers exports.
type Exporter struct {
	sink   Sink
	now    func() time.Time
	logger *slog.Logger
}

// NewExporter returns an Exporter. A nil logger discards output.
func NewExporter(sink Sink, now func() time.Time, logger *slog.Logger) *Exporter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{sink: sink, now: now, logger: logger}
}

// Export renders tasks and hands the document to the sink.
func (e *Exporter) Export(ctx context.Context, tasks []model.Task) (Result, error) {
	if len(tasks) == 0 {
		return Result{}, ErrNothingToExport
	}

	data, err := CSV(tasks)
	if err != nil {
		return Result{}, err
	}

	name := FileName(e.now())
	loc, err := e.sink.Deliver(ctx, name, data)
	if err != nil {
		return Result{}, fmt.Errorf("delivering %s: %w", name, err)
	}

	e.logger.Info("tasks exported", "file", name, "location", loc, "rows", len(tasks))
	return Result{Name: name, Location: loc, Rows: len(tasks)}, nil
}
