// Package export renders the loaded page of tasks as CSV and delivers the
// document to a directory or a mailbox.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// Header is the first row of every export.
var Header = []string{"ID", "Title", "Description", "Status", "Priority", "Due Date", "Created By", "Created On"}

// MissingDate is written for tasks without a due date.
const MissingDate = "N/A"

// CSV renders tasks in the given order. Fields containing a comma, quote
// or line break are quoted with inner quotes doubled.
func CSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, t := range tasks {
		if err := w.Write(row(t)); err != nil {
			return nil, fmt.Errorf("writing task %s: %w", t.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func row(t model.Task) []string {
	due := MissingDate
	if t.DueDate != nil && t.DueDate.String() != "" {
		due = t.DueDate.String()
	}
	created := ""
	if t.CreatedOn != nil {
		created = t.CreatedOn.String()
	}
	return []string{
		string(t.ID),
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority.OrDefault()),
		due,
		t.CreatedBy,
		created,
	}
}

// FileName returns tasks_export_<YYYY-MM-DD>.csv for the UTC date of now.
func FileName(now time.Time) string {
	return "tasks_export_" + now.UTC().Format("2006-01-02") + ".csv"
}
