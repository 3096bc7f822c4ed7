package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayout_ContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestLayout_HeaderSpansWidth(t *testing.T) {
	l := NewLayout(60, 20)

	header := l.RenderHeader("TaskFlow", "alice")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "TaskFlow")
	assert.Contains(t, header, "alice")
}

func TestLayout_FrameHasFixedHeight(t *testing.T) {
	l := NewLayout(40, 10)

	out := l.RenderWithFrame(l.RenderHeader("t", ""), "one\ntwo", l.RenderStatusBar("ready", false))
	assert.Equal(t, 10, strings.Count(out, "\n")+1)
	assert.Contains(t, out, "ready")
}
