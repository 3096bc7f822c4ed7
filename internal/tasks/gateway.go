// Package tasks is the client for the /tasks resource.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/nhle/taskflow/internal/model"
)

// Transport is the subset of api.Client used here.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, result any) error
	Post(ctx context.Context, path string, body, result any) error
	Put(ctx context.Context, path string, body, result any) error
	Delete(ctx context.Context, path string) error
}

// Query selects one page of tasks. Page is zero-based.
type Query struct {
	Page   int
	Size   int
	Status model.StatusFilter
}

func (q Query) values() url.Values {
	return url.Values{
		"page":   {strconv.Itoa(q.Page)},
		"size":   {strconv.Itoa(q.Size)},
		"status": {q.Status.Param()},
	}
}

// Page is one page of tasks plus the size of the whole filtered
// collection.
type Page struct {
	Content       []model.Task `json:"content"`
	TotalElements int          `json:"totalElements"`
}

// Gateway performs CRUD calls against the task service.
type Gateway struct {
	transport Transport
	logger    *slog.Logger
}

// NewGateway returns a Gateway. A nil logger discards output.
func NewGateway(transport Transport, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{transport: transport, logger: logger}
}

// GetAll fetches one page. Tasks repeating an id already seen on the page
// are dropped. TotalElements is the count the server reported.
func (g *Gateway) GetAll(ctx context.Context, q Query) (Page, error) {
	var p Page
	if err := g.transport.Get(ctx, "/tasks", q.values(), &p); err != nil {
		return Page{}, fmt.Errorf("listing tasks: %w", err)
	}

	seen := make(map[model.ID]bool, len(p.Content))
	unique := p.Content[:0]
	for _, t := range p.Content {
		if seen[t.ID] {
			g.logger.Warn("dropping duplicate task id in page", "id", t.ID, "page", q.Page)
			continue
		}
		seen[t.ID] = true
		unique = append(unique, t)
	}
	p.Content = unique

	if p.TotalElements < len(p.Content) {
		g.logger.Warn("server total is below the page length", "total", p.TotalElements, "page_len", len(p.Content))
	}
	return p, nil
}

// Create posts a new task and returns the stored copy.
func (g *Gateway) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t.ID = ""
	var created model.Task
	if err := g.transport.Post(ctx, "/tasks", t, &created); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	g.logger.Info("task created", "id", created.ID, "status", created.Status)
	return created, nil
}

// Update replaces every field of the task with the given id.
func (g *Gateway) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if t.ID == "" {
		return model.Task{}, fmt.Errorf("updating task: missing id")
	}
	var updated model.Task
	if err := g.transport.Put(ctx, taskPath(t.ID), t, &updated); err != nil {
		return model.Task{}, fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	g.logger.Info("task updated", "id", t.ID, "status", t.Status)
	return updated, nil
}

// Delete removes the task with the given id.
func (g *Gateway) Delete(ctx context.Context, id model.ID) error {
	if err := g.transport.Delete(ctx, taskPath(id)); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	g.logger.Info("task deleted", "id", id)
	return nil
}

func taskPath(id model.ID) string {
	return "/tasks/" + url.PathEscape(string(id))
}
