package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/taskflow/internal/theme"
)

// ResultMsg reports the user's answer.
type ResultMsg struct {
	Confirmed bool
}

// Model is a yes/no dialog. y and n answer immediately; esc answers no.
type Model struct {
	form   *huh.Form
	answer *bool
	prompt string
	width  int
}

// New creates an idle dialog.
func New(width int) Model {
	return Model{answer: new(bool), width: width}
}

// Start shows prompt with "No" preselected.
func (m *Model) Start(prompt string) tea.Cmd {
	m.prompt = prompt
	*m.answer = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(m.answer),
		),
	).WithShowHelp(false).WithWidth(m.dialogWidth())
	return m.form.Init()
}

// Prompt returns the question being asked.
func (m Model) Prompt() string {
	return m.prompt
}

// Active reports whether the dialog awaits an answer.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "y", "Y":
			return m.resolve(true)
		case "n", "N", "esc":
			return m.resolve(false)
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.resolve(*m.answer)
	case huh.StateAborted:
		return m.resolve(false)
	}
	return m, cmd
}

func (m Model) resolve(confirmed bool) (Model, tea.Cmd) {
	m.form = nil
	return m, func() tea.Msg { return ResultMsg{Confirmed: confirmed} }
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return theme.PanelStyle.
		Width(m.dialogWidth() + 4).
		Render(m.form.View() + "\n" + theme.HelpStyle.Render("y yes · n/esc no"))
}

// SetSize updates the dialog width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func (m Model) dialogWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 70 {
		w = 70
	}
	return w
}
