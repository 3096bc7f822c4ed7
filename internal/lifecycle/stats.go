package lifecycle

import "github.com/nhle/taskflow/internal/model"

// Stats summarises the board. Total is the server's count for the whole
// filtered collection; the other counts cover only the loaded page.
type Stats struct {
	Total    int
	Done     int
	Pending  int
	Progress int
}

// ComputeStats derives Stats from the loaded page and the server total.
func ComputeStats(loaded []model.Task, total int) Stats {
	st := Stats{Total: total}
	for _, t := range loaded {
		switch t.Status {
		case model.StatusDone:
			st.Done++
		case model.StatusOpen, model.StatusInReview:
			st.Pending++
		case model.StatusInProgress, model.StatusOnHold:
			st.Progress++
		}
	}
	return st
}
