package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
)

// Adaptive color pairs (dark value, light value). Apply selects which half
// is rendered.
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorText    = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply switches every adaptive color to the palette for mode. The
// terminal's own background is ignored once a mode has been applied.
func Apply(mode model.ThemeMode) {
	lipgloss.SetHasDarkBackground(mode.OrDefault() == model.ThemeDark)
}

// Current reports the palette currently in effect.
func Current() model.ThemeMode {
	if lipgloss.HasDarkBackground() {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#F8F9FA"}).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBarStyle replaces StatusBarStyle while an error is shown.
var ErrorBarStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Dark: "#1A202C", Light: "#F8F9FA"}).
	Background(ColorRed).
	Padding(0, 1)

// PanelStyle wraps overlays such as help, the command palette and forms.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames a single statistic on the overview screen.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Align(lipgloss.Center)

// TitleStyle is used for panel titles.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorText).
	MarginBottom(1)

var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

var NoticeStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// StatusStyle returns a color-coded style for a task status.
func StatusStyle(s model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Width(11)

	switch s {
	case model.StatusOpen:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusInReview:
		return base.Foreground(ColorMagenta)
	case model.StatusOnHold:
		return base.Foreground(ColorOrange)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Width(6)

	switch p.OrDefault() {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorBlue)
	}
}
