package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Answers(t *testing.T) {
	cases := []struct {
		name string
		key  tea.KeyMsg
		want bool
	}{
		{"yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true},
		{"no", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(80)
			m.Start("Delete \"x\"?")
			require.True(t, m.Active())

			m, cmd := m.Update(tc.key)
			require.NotNil(t, cmd)
			assert.Equal(t, ResultMsg{Confirmed: tc.want}, cmd())
			assert.False(t, m.Active())
		})
	}
}

func TestModel_ShowsPrompt(t *testing.T) {
	m := New(80)
	m.Start("Restart \"deploy\" as a new open task?")

	assert.Equal(t, "Restart \"deploy\" as a new open task?", m.Prompt())
	assert.Contains(t, m.View(), "deploy")
}

func TestModel_IdleIgnoresInput(t *testing.T) {
	m := New(80)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}
