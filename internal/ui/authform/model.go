package authform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/theme"
)

// Mode selects between signing in and creating an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginMsg is dispatched when the login form is submitted.
type LoginMsg struct {
	Username string
	Password string
}

// RegisterMsg is dispatched when the registration form is submitted.
type RegisterMsg struct {
	Username string
	Password string
	Confirm  string
}

type formBindings struct {
	username string
	password string
	confirm  string
}

// Model is the sign-in screen.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    Mode
	notice  string
	failure string
	width   int
	height  int
}

// New creates a sign-in screen in login mode.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Init focuses the first field of a started form.
func (m Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Mode reports whether the screen is logging in or registering.
func (m Model) Mode() Mode {
	return m.mode
}

// Failure returns the error shown under the form, if any.
func (m Model) Failure() string {
	return m.failure
}

// Notice returns the informational message shown under the form, if any.
func (m Model) Notice() string {
	return m.notice
}

// Start shows an empty form in the given mode. The username is kept when
// switching modes.
func (m *Model) Start(mode Mode) tea.Cmd {
	m.mode = mode
	m.fb.password = ""
	m.fb.confirm = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError shows a failure message under the form and restarts it.
func (m *Model) SetError(msg string) tea.Cmd {
	m.failure = msg
	m.notice = ""
	return m.Start(m.mode)
}

// SetNotice shows an informational message under the form.
func (m *Model) SetNotice(msg string) {
	m.notice = msg
	m.failure = ""
}

// Update handles messages for the sign-in screen. ctrl+n switches between
// login and registration.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+n" {
		m.failure = ""
		m.notice = ""
		if m.mode == ModeLogin {
			return m, m.Start(ModeRegister)
		}
		return m, m.Start(ModeLogin)
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		submitted := m.submit()
		return m, tea.Batch(submitted, m.Start(m.mode))
	case huh.StateAborted:
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) submit() tea.Cmd {
	username := strings.TrimSpace(m.fb.username)
	password := m.fb.password

	if m.mode == ModeRegister {
		msg := RegisterMsg{Username: username, Password: password, Confirm: m.fb.confirm}
		return func() tea.Msg { return msg }
	}
	msg := LoginMsg{Username: username, Password: password}
	return func() tea.Msg { return msg }
}

// View renders the sign-in screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	heading := "Sign in"
	if m.mode == ModeRegister {
		heading = "Create an account"
	}

	rows := []string{theme.TitleStyle.Render(heading), m.form.View()}
	if m.failure != "" {
		rows = append(rows, theme.ErrorStyle.Render(m.failure))
	}
	if m.notice != "" {
		rows = append(rows, theme.NoticeStyle.Render(m.notice))
	}
	if m.mode == ModeLogin {
		rows = append(rows, theme.HelpStyle.Render("ctrl+n register a new account"))
	} else {
		rows = append(rows, theme.HelpStyle.Render("ctrl+n back to sign in"))
	}

	return theme.PanelStyle.
		Width(m.formWidth() + 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username).
			Validate(required("Username")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(required("Password")),
	}
	if m.mode == ModeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(required("Confirmation")),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width / 2
	if w < 36 {
		w = 36
	}
	if w > 60 {
		w = 60
	}
	return w
}

func required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
