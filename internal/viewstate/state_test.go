package viewstate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskflow/internal/model"
)

func TestState_FilterChangeResetsPage(t *testing.T) {
	for _, f := range []model.StatusFilter{model.FilterAll, model.FilterFor(model.StatusDone), ""} {
		s := NewState(10)
		s.Page = 4
		s.SetStatusFilter(f)
		assert.Equal(t, 0, s.Page, "filter %q", f)
	}

	s := NewState(10)
	s.SetStatusFilter("")
	assert.Equal(t, model.FilterAll, s.StatusFilter)
}

func TestState_PageSizeChangeResetsPage(t *testing.T) {
	s := NewState(10)
	s.Page = 3
	s.SetPageSize(25)
	assert.Equal(t, 0, s.Page)
	assert.Equal(t, 25, s.PageSize)

	s.Page = 2
	s.SetPageSize(0)
	assert.Equal(t, 2, s.Page, "invalid size is ignored")
	assert.Equal(t, 25, s.PageSize)
}

func TestState_SearchKeepsPage(t *testing.T) {
	s := NewState(10)
	s.Page = 2
	s.SetSearchTerm("bug")
	assert.Equal(t, 2, s.Page)
}

func TestState_Paging(t *testing.T) {
	s := NewState(10)
	assert.Equal(t, 5, s.PageCount(50))
	assert.Equal(t, 1, s.PageCount(0))
	assert.Equal(t, 3, s.PageCount(21))

	assert.False(t, s.PrevPage())
	for i := 0; i < 4; i++ {
		assert.True(t, s.NextPage(50))
	}
	assert.False(t, s.NextPage(50))
	assert.Equal(t, 4, s.Page)
	assert.True(t, s.PrevPage())
	assert.Equal(t, 3, s.Page)
}

func TestNewState_DefaultsPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewState(0).PageSize)
}

func TestVisible_CaseInsensitiveTitleOrDescription(t *testing.T) {
	var loaded []model.Task
	for i := 0; i < 10; i++ {
		loaded = append(loaded, model.Task{ID: model.ID(fmt.Sprint(i)), Title: fmt.Sprintf("task %d", i)})
	}
	loaded[3].Title = "Fix LOGIN bug"
	loaded[7].Description = "the login page flickers"

	got := Visible(loaded, "Login")
	assert.Len(t, got, 2)
	assert.Equal(t, model.ID("3"), got[0].ID)
	assert.Equal(t, model.ID("7"), got[1].ID)

	assert.Len(t, Visible(loaded, "  "), 10)
	assert.Empty(t, Visible(loaded, "nothing matches"))
}
