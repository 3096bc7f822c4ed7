package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskflow/internal/keys"
)

func TestView_ListsBindingsAndCycle(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 200, 40)
	m.SetSize(200, 40)

	view := m.View()
	assert.Contains(t, view, "advance status")
	assert.Contains(t, view, "export csv")
	assert.Contains(t, view, "Open → In Progress → In Review → On Hold → Done → Open")
}
