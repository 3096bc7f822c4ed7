package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/export"
	"github.com/nhle/taskflow/internal/lifecycle"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/ui/authform"
	"github.com/nhle/taskflow/internal/ui/taskform"
)

// loginResultMsg is sent after a login attempt.
type loginResultMsg struct {
	session model.Session
	err     error
}

// registerResultMsg is sent after a registration attempt.
type registerResultMsg struct {
	username string
	err      error
}

// boardLoadedMsg is sent after the board has fetched its current page.
type boardLoadedMsg struct{ err error }

// mutationResultMsg is sent after a create, update, delete or restart.
// action names the attempt for error messages; done is the success text.
type mutationResultMsg struct {
	action string
	done   string
	err    error
}

// exportResultMsg is sent after an export attempt.
type exportResultMsg struct {
	result export.Result
	err    error
}

// userMessage maps err to the text shown in the status bar.
func userMessage(err error, fallback string) string {
	return api.UserMessage(err, fallback)
}

func (m Model) login(username, password string) tea.Cmd {
	gw := m.deps.Auth
	return func() tea.Msg {
		s, err := gw.Login(context.Background(), username, password)
		return loginResultMsg{session: s, err: err}
	}
}

func (m Model) register(username, password, confirm string) tea.Cmd {
	gw := m.deps.Auth
	return func() tea.Msg {
		err := gw.Register(context.Background(), username, password, confirm)
		return registerResultMsg{username: username, err: err}
	}
}

// refresh reloads the board's current page.
func (m Model) refresh() tea.Cmd {
	board := m.deps.Board
	return func() tea.Msg {
		return boardLoadedMsg{err: board.Refresh(context.Background())}
	}
}

func (m Model) cycle(t model.Task) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		updated, err := svc.CycleStatus(context.Background(), t)
		return mutationResultMsg{
			action: "update status",
			done:   fmt.Sprintf("%q is now %s", t.Title, updated.Status),
			err:    err,
		}
	}
}

func (m *Model) submitForm(msg taskform.SubmittedMsg) tea.Cmd {
	svc := m.deps.Service

	if msg.Mode == taskform.ModeCreate {
		return m.startMutation("creating task", func() tea.Msg {
			created, err := svc.Create(context.Background(), msg.Draft)
			return mutationResultMsg{
				action: "create task",
				done:   fmt.Sprintf("Created %q", created.Title),
				err:    err,
			}
		})
	}

	return m.startMutation("saving task", func() tea.Msg {
		updated, err := svc.Edit(context.Background(), msg.Task, msg.Draft)
		return mutationResultMsg{
			action: "update task",
			done:   fmt.Sprintf("Saved %q", updated.Title),
			err:    err,
		}
	})
}

func (m Model) confirmPending(c lifecycle.Confirmation) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		err := svc.Confirm(context.Background())

		res := mutationResultMsg{action: c.Kind.String() + " task", err: err}
		switch c.Kind {
		case lifecycle.KindDelete:
			res.done = fmt.Sprintf("Deleted %q", c.Task.Title)
		case lifecycle.KindRestart:
			res.done = fmt.Sprintf("Restarted %q as a new open task", c.Task.Title)
		}
		return res
	}
}

func (m Model) export(tasks []model.Task) tea.Cmd {
	exporter := m.deps.Exporter
	return func() tea.Msg {
		res, err := exporter.Export(context.Background(), tasks)
		return exportResultMsg{result: res, err: err}
	}
}

func (m *Model) handleExportResult(msg exportResultMsg) {
	switch {
	case errors.Is(msg.err, export.ErrNothingToExport):
		m.setError("Nothing to export: the current page is empty")
	case msg.err != nil:
		m.deps.Logger.Error("export failed", "error", msg.err)
		m.setError(userMessage(msg.err, "Export failed"))
	default:
		m.setStatus(fmt.Sprintf("Exported %d tasks to %s", msg.result.Rows, msg.result.Location))
	}
}

func (m *Model) toggleTheme() {
	mode, err := m.deps.Session.ToggleTheme()
	if err != nil {
		m.setError(userMessage(err, "Could not save theme"))
		return
	}
	theme.Apply(mode)
	m.setStatus(fmt.Sprintf("Switched to %s theme", mode))
}

// logout clears the session and the loaded board, and returns to the
// sign-in screen.
func (m *Model) logout() tea.Cmd {
	if err := m.deps.Auth.Logout(); err != nil {
		m.setError(userMessage(err, "Logout failed"))
		return nil
	}
	m.deps.Service.Cancel()
	m.deps.Board.Reset()
	m.currentView = ViewLogin
	m.status, m.statusErr = "", false
	cmd := m.authView.Start(authform.ModeLogin)
	m.authView.SetNotice("Signed out")
	return tea.Batch(cmd, m.syncBoard())
}

// nextFilter rotates All -> each status in display order -> All.
func nextFilter(f model.StatusFilter) model.StatusFilter {
	if f.IsAll() {
		return model.FilterFor(model.AllStatuses[0])
	}
	for i, s := range model.AllStatuses {
		if model.FilterFor(s) == f && i+1 < len(model.AllStatuses) {
			return model.FilterFor(model.AllStatuses[i+1])
		}
	}
	return model.FilterAll
}

// nextSize returns the option after current, wrapping around. An unknown
// current size selects the first option.
func nextSize(options []int, current int) int {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
