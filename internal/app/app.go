package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/export"
	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/lifecycle"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/ui"
	"github.com/nhle/taskflow/internal/ui/authform"
	"github.com/nhle/taskflow/internal/ui/command"
	"github.com/nhle/taskflow/internal/ui/confirm"
	helpview "github.com/nhle/taskflow/internal/ui/help"
	"github.com/nhle/taskflow/internal/ui/overview"
	"github.com/nhle/taskflow/internal/ui/taskform"
	"github.com/nhle/taskflow/internal/ui/tasklist"
	"github.com/nhle/taskflow/internal/viewstate"
)

const waitMessage = "Wait for the current change to finish"

// ViewState represents the active screen.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewBoard
	ViewOverview
	ViewForm
	ViewConfirm
	ViewHelp
	ViewCommand
)

// Deps are the collaborators the dashboard drives.
type Deps struct {
	Auth      *auth.Gateway
	Session   *session.Provider
	Board     *viewstate.Board
	Service   *lifecycle.Service
	Exporter  *export.Exporter
	PageSizes []int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Model is the root Bubble Tea model. It routes messages between the
// screens and runs every gateway call as a tea.Cmd.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	authView     authform.Model
	taskList     tasklist.Model
	formView     taskform.Model
	confirmView  confirm.Model
	overview     overview.Model
	helpView     helpview.Model
	commandView  command.Model
	spinner      spinner.Model
	inflight     int
	mutating     bool
	busyLabel    string
	status       string
	statusErr    bool
	ready        bool
}

// New creates the root model. A stored session opens the board directly;
// otherwise the sign-in screen is shown.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if len(deps.PageSizes) == 0 {
		deps.PageSizes = []int{5, 10, 25}
	}

	theme.Apply(deps.Session.ThemeMode())

	k := keys.DefaultKeyMap()
	m := Model{
		deps:        deps,
		keys:        k,
		layout:      ui.NewLayout(80, 24),
		authView:    authform.New(80, 22),
		taskList:    tasklist.New(k, 80, 22),
		formView:    taskform.New(80, 22),
		confirmView: confirm.New(80),
		overview:    overview.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	if _, ok, err := deps.Session.Current(); err == nil && ok {
		m.currentView = ViewBoard
		m.inflight = 1
		m.busyLabel = "loading tasks"
	} else {
		if err != nil {
			deps.Logger.Warn("reading stored session", "error", err)
		}
		m.currentView = ViewLogin
		m.authView.Start(authform.ModeLogin)
	}
	m.syncBoard()
	return m
}

// Init starts the first page load, or focuses the sign-in form.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.authView.Init()
	}
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// CurrentView reports the active screen.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Busy reports whether any gateway call is in flight.
func (m Model) Busy() bool {
	return m.inflight > 0
}

// Mutating reports whether a create, edit, status change, delete or
// restart is in flight. Those actions stay disabled until it completes.
func (m Model) Mutating() bool {
	return m.mutating
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.authView.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.confirmView.SetSize(w)
		m.overview.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authform.LoginMsg:
		return m, m.startBusy("signing in", m.login(msg.Username, msg.Password))

	case authform.RegisterMsg:
		return m, m.startBusy("creating account", m.register(msg.Username, msg.Password, msg.Confirm))

	case loginResultMsg:
		m.finish()
		if msg.err != nil {
			return m, m.authView.SetError(userMessage(msg.err, "Login failed"))
		}
		m.currentView = ViewBoard
		m.setStatus(fmt.Sprintf("Welcome, %s", msg.session.Username))
		return m, m.startBusy("loading tasks", m.refresh())

	case registerResultMsg:
		m.finish()
		if msg.err != nil {
			return m, m.authView.SetError(userMessage(msg.err, "Registration failed"))
		}
		cmd := m.authView.Start(authform.ModeLogin)
		m.authView.SetNotice(fmt.Sprintf("Account %s created. Sign in to continue.", msg.username))
		return m, cmd

	case boardLoadedMsg:
		m.finish()
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Failed to load tasks"))
		}
		return m, m.syncBoard()

	case mutationResultMsg:
		m.finish()
		m.mutating = false
		if msg.err != nil {
			m.setError(userMessage(msg.err, "Failed to "+msg.action))
		} else {
			m.setStatus(msg.done)
		}
		return m, m.syncBoard()

	case exportResultMsg:
		m.finish()
		m.handleExportResult(msg)
		return m, nil

	case tasklist.SelectedTaskMsg:
		if m.mutating {
			m.setError(waitMessage)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.formView.StartEdit(msg.Task)

	case tasklist.SearchChangedMsg:
		m.deps.Board.Update(func(s *viewstate.State) { s.SetSearchTerm(msg.Term) })
		return m, m.syncBoard()

	case taskform.SubmittedMsg:
		m.currentView = ViewBoard
		if m.mutating {
			m.setError(waitMessage)
			return m, nil
		}
		return m, m.submitForm(msg)

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case confirm.ResultMsg:
		m.currentView = ViewBoard
		if !msg.Confirmed {
			m.deps.Service.Cancel()
			m.setStatus("Canceled")
			return m, nil
		}
		pending, ok := m.deps.Service.Pending()
		if !ok {
			return m, nil
		}
		if m.mutating {
			m.deps.Service.Cancel()
			m.setError(waitMessage)
			return m, nil
		}
		return m, m.startMutation(pending.Kind.String(), m.confirmPending(pending))

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.currentView {
		case ViewBoard, ViewOverview:
			if !m.taskList.Searching() {
				if next, cmd, handled := m.handleBoardKeys(msg); handled {
					return next, cmd
				}
			}
		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
				return m, nil
			}
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// handleBoardKeys processes shortcuts on the board and overview screens.
func (m Model) handleBoardKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.status != "" {
		m.status, m.statusErr = "", false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Overview):
		if m.currentView == ViewOverview {
			m.currentView = ViewBoard
		} else {
			m.currentView = ViewOverview
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewOverview {
			m.currentView = ViewBoard
			return m, nil, true
		}
		return m, nil, false

	case key.Matches(msg, m.keys.Refresh):
		return m, m.startBusy("loading tasks", m.refresh()), true

	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
		return m, nil, true

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout(), true

	case key.Matches(msg, m.keys.Filter):
		m.deps.Board.Update(func(s *viewstate.State) { s.SetStatusFilter(nextFilter(s.StatusFilter)) })
		return m, m.startBusy("loading tasks", m.refresh()), true

	case key.Matches(msg, m.keys.PageSize):
		m.deps.Board.Update(func(s *viewstate.State) { s.SetPageSize(nextSize(m.deps.PageSizes, s.PageSize)) })
		return m, m.startBusy("loading tasks", m.refresh()), true

	case key.Matches(msg, m.keys.NextPage):
		if !m.deps.Board.NextPage() {
			return m, nil, true
		}
		return m, m.startBusy("loading tasks", m.refresh()), true

	case key.Matches(msg, m.keys.PrevPage):
		if !m.deps.Board.PrevPage() {
			return m, nil, true
		}
		return m, m.startBusy("loading tasks", m.refresh()), true

	case key.Matches(msg, m.keys.Export):
		if m.Busy() {
			return m, nil, true
		}
		return m, m.startBusy("exporting", m.export(m.deps.Board.Snapshot().Tasks)), true
	}

	if m.currentView != ViewBoard {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.New):
		if m.mutating {
			m.setError(waitMessage)
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.formView.StartCreate(), true

	case key.Matches(msg, m.keys.Cycle):
		task, ok := m.taskList.SelectedTask()
		if !ok || m.mutating {
			return m, nil, true
		}
		if !lifecycle.CanCycle(task) {
			m.setError(fmt.Sprintf("%s tasks cannot be advanced", task.Status))
			return m, nil, true
		}
		return m, m.startMutation("updating status", m.cycle(task)), true

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.taskList.SelectedTask()
		if !ok || m.mutating {
			return m, nil, true
		}
		c, err := m.deps.Service.RequestDelete(task)
		if err != nil {
			m.setError(userMessage(err, "Completed tasks cannot be deleted"))
			return m, nil, true
		}
		return m, m.askConfirmation(c), true

	case key.Matches(msg, m.keys.Restart):
		task, ok := m.taskList.SelectedTask()
		if !ok || m.mutating {
			return m, nil, true
		}
		c, err := m.deps.Service.RequestRestart(task)
		if err != nil {
			m.setError(userMessage(err, "Only canceled tasks can be restarted, and only once"))
			return m, nil, true
		}
		return m, m.askConfirmation(c), true
	}

	return m, nil, false
}

func (m *Model) askConfirmation(c lifecycle.Confirmation) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewConfirm
	return m.confirmView.Start(c.Prompt())
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.authView, cmd = m.authView.Update(msg)
	case ViewBoard:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewConfirm:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("TaskFlow", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.statusLine(), m.statusErr)
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()

	switch m.currentView {
	case ViewLogin:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.authView.View())
	case ViewBoard:
		return m.taskList.View()
	case ViewOverview:
		return m.overview.View()
	case ViewForm:
		return m.formView.View()
	case ViewConfirm:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.confirmView.View())
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// headerStatus shows the spinner while busy, otherwise the signed-in user.
func (m Model) headerStatus() string {
	if m.Busy() {
		return m.spinner.View() + " " + m.busyLabel
	}
	if m.currentView == ViewLogin {
		return "not signed in"
	}
	sess, ok, err := m.deps.Session.Current()
	if err != nil || !ok {
		return ""
	}
	return fmt.Sprintf("%s · %s theme", sess.Username, theme.Current())
}

// statusLine returns the last result message, or key hints.
func (m Model) statusLine() string {
	if m.status != "" {
		return m.status
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | tab next field | ctrl+n switch sign in/register | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewForm:
		return "enter next/submit | esc cancel"
	case ViewConfirm:
		return "y confirm | n cancel"
	case ViewOverview:
		return "o board | x export | r refresh | q quit"
	default:
		if m.taskList.Searching() {
			return "type to filter the loaded page | enter keep | esc clear"
		}
		return "n new | space advance | d delete | R restart | f filter | [ ] page | / search | ? help"
	}
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

// startBusy counts a call in flight and starts the spinner alongside cmd.
// Every result message calls finish exactly once.
func (m *Model) startBusy(label string, cmd tea.Cmd) tea.Cmd {
	m.inflight++
	m.busyLabel = label
	return tea.Batch(m.spinner.Tick, cmd)
}

// startMutation is startBusy for calls that change tasks. The flag is
// cleared only by mutationResultMsg, never by a page load.
func (m *Model) startMutation(label string, cmd tea.Cmd) tea.Cmd {
	m.mutating = true
	return m.startBusy(label, cmd)
}

func (m *Model) finish() {
	if m.inflight > 0 {
		m.inflight--
	}
}

// syncBoard copies the board's current page into the list and overview.
func (m *Model) syncBoard() tea.Cmd {
	snap := m.deps.Board.Snapshot()

	sess, _, err := m.deps.Session.Current()
	if err != nil {
		m.deps.Logger.Warn("reading session", "error", err)
	}
	m.overview.SetData(lifecycle.ComputeStats(snap.Tasks, snap.Total), sess, snap.State.StatusFilter)

	return m.taskList.SetSnapshot(snap, m.deps.Now(), m.deps.Board.IsRestarted)
}
