package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/theme"
)

// Names lists the commands offered as completions.
var Names = []string{
	"refresh",
	"export",
	"theme",
	"overview",
	"board",
	"filter",
	"size",
	"rename",
	"logout",
	"help",
	"quit",
}

// CommandMsg is emitted when the user executes a command line.
type CommandMsg struct {
	Name string
	Args []string
}

// Arg returns the arguments joined back into one string.
func (c CommandMsg) Arg() string {
	return strings.Join(c.Args, " ")
}

// CancelMsg is emitted when the palette is closed without a command.
type CancelMsg struct{}

// Parse splits a command line into a lowercase name and its arguments.
func Parse(line string) (CommandMsg, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command (tab completes)..."
	ti.Prompt = ": "
	ti.Width = width - 6
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			cmd, ok := Parse(line)
			if !ok {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, func() tea.Msg { return cmd }
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Command Palette"),
		m.input.View(),
		"",
		theme.HelpStyle.Render("filter <status|all> · size <n> · rename <name>"),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
