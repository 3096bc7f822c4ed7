package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskflow/internal/model"
)

func TestComputeStats_ScopesCountsToLoadedPage(t *testing.T) {
	statuses := []model.Status{
		model.StatusDone, model.StatusDone, model.StatusDone,
		model.StatusOpen, model.StatusOpen, model.StatusInReview,
		model.StatusInProgress, model.StatusOnHold,
		model.StatusCanceled, model.StatusCanceled,
	}
	loaded := make([]model.Task, 0, len(statuses))
	for _, s := range statuses {
		loaded = append(loaded, model.Task{Status: s})
	}

	st := ComputeStats(loaded, 50)

	assert.Equal(t, 50, st.Total)
	assert.Equal(t, 3, st.Done)
	assert.Equal(t, 3, st.Pending)
	assert.Equal(t, 2, st.Progress)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{Total: 0}, ComputeStats(nil, 0))
}
