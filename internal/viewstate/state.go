// Package viewstate tracks the page, page size, status filter and search
// term of the task board, and holds the most recently loaded page.
package viewstate

import (
	"strings"

	"github.com/nhle/taskflow/internal/model"
)

// DefaultPageSize is used when no valid size is configured.
const DefaultPageSize = 10

// State is the ephemeral query state of the board. Page is zero-based.
type State struct {
	Page         int
	PageSize     int
	StatusFilter model.StatusFilter
	SearchTerm   string
}

// NewState returns the initial state for the given page size.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize, StatusFilter: model.FilterAll}
}

// SetStatusFilter changes the filter and returns to the first page.
func (s *State) SetStatusFilter(f model.StatusFilter) {
	if f == "" {
		f = model.FilterAll
	}
	s.StatusFilter = f
	s.Page = 0
}

// SetPageSize changes the page size and returns to the first page.
// Non-positive sizes are ignored.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.PageSize = size
	s.Page = 0
}

// SetSearchTerm changes the client-side search term. The page is kept.
func (s *State) SetSearchTerm(term string) {
	s.SearchTerm = term
}

// PageCount returns the number of pages for total records, at least 1.
func (s State) PageCount(total int) int {
	if s.PageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + s.PageSize - 1) / s.PageSize
}

// NextPage advances one page if one exists for total records.
func (s *State) NextPage(total int) bool {
	if s.Page+1 >= s.PageCount(total) {
		return false
	}
	s.Page++
	return true
}

// PrevPage goes back one page if not already on the first.
func (s *State) PrevPage() bool {
	if s.Page == 0 {
		return false
	}
	s.Page--
	return true
}

// Visible narrows tasks to those whose title or description contains term,
// ignoring case. An empty term returns tasks unchanged. Order is kept.
func Visible(tasks []model.Task, term string) []model.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tasks
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Description), term) {
			out = append(out, t)
		}
	}
	return out
}
