package overview

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/lifecycle"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// Model renders the summary screen: who is signed in and the board
// statistics.
type Model struct {
	stats   lifecycle.Stats
	session model.Session
	filter  model.StatusFilter
	width   int
	height  int
}

// New creates an empty overview.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetData replaces the figures shown.
func (m *Model) SetData(stats lifecycle.Stats, sess model.Session, filter model.StatusFilter) {
	m.stats = stats
	m.session = sess
	m.filter = filter
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the overview.
func (m Model) View() string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", m.stats.Total, theme.ColorBlue),
		card("Completed", m.stats.Done, theme.ColorGreen),
		card("Pending", m.stats.Pending, theme.ColorMagenta),
		card("In progress", m.stats.Progress, theme.ColorYellow),
	)

	role := m.session.Role
	if role == "" {
		role = model.DefaultRole
	}
	who := fmt.Sprintf("Signed in as %s (%s)", m.session.Username, role)

	note := fmt.Sprintf("Total counts every task matching status %s; the other cards count the loaded page.", m.filter.Param())

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Overview"),
		who,
		"",
		cards,
		"",
		theme.HelpStyle.Render(note),
	))
}

func card(label string, value int, color lipgloss.TerminalColor) string {
	number := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strconv.Itoa(value))
	return theme.CardStyle.Width(16).Render(number + "\n" + theme.DimmedStyle.Render(label))
}
