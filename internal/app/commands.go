package app

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/ui/command"
	"github.com/nhle/taskflow/internal/viewstate"
)

// maxPageSize mirrors the server's upper bound for the size parameter.
const maxPageSize = 100

// executeCommand handles a line from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "refresh", "r":
		return m.startBusy("loading tasks", m.refresh())

	case "export":
		return m.startBusy("exporting", m.export(m.deps.Board.Snapshot().Tasks))

	case "theme":
		m.toggleTheme()
		return nil

	case "overview", "stats":
		m.currentView = ViewOverview
		return nil

	case "board", "tasks":
		m.currentView = ViewBoard
		return nil

	case "filter":
		f, err := model.ParseStatusFilter(c.Arg())
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		m.deps.Board.Update(func(s *viewstate.State) { s.SetStatusFilter(f) })
		return m.startBusy("loading tasks", m.refresh())

	case "size":
		n, err := strconv.Atoi(c.Arg())
		if err != nil || n <= 0 || n > maxPageSize {
			m.setError(fmt.Sprintf("page size must be between 1 and %d", maxPageSize))
			return nil
		}
		m.deps.Board.Update(func(s *viewstate.State) { s.SetPageSize(n) })
		return m.startBusy("loading tasks", m.refresh())

	case "rename":
		if err := m.deps.Session.Rename(c.Arg()); err != nil {
			m.setError(userMessage(err, "Could not rename profile"))
			return nil
		}
		m.setStatus(fmt.Sprintf("Display name changed to %s", c.Arg()))
		return m.syncBoard()

	case "logout":
		return m.logout()

	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil

	case "quit", "q":
		return tea.Quit

	default:
		m.setError(fmt.Sprintf("unknown command %q", c.Name))
		return nil
	}
}
