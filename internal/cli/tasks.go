package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/lifecycle"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/tasks"
	"github.com/nhle/taskflow/internal/viewstate"
)

// lookupPageSize is the page size used when searching for a task by id.
const lookupPageSize = 100

// pageFlags select one page of the listing. Page is one-based on the
// command line.
type pageFlags struct {
	page   int
	size   int
	status string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", 0, "Tasks per page (defaults to display.page_size)")
	cmd.Flags().StringVar(&f.status, "status", "all", "Status filter (all, open, in-progress, in-review, on-hold, done, canceled)")
}

// load applies the flags to the board and fetches the page.
func (f *pageFlags) load(ctx context.Context, e *env) (viewstate.Snapshot, error) {
	filter, err := model.ParseStatusFilter(f.status)
	if err != nil {
		return viewstate.Snapshot{}, err
	}
	if f.page < 1 {
		return viewstate.Snapshot{}, fmt.Errorf("page must be at least 1, got %d", f.page)
	}

	e.board.Update(func(s *viewstate.State) {
		s.SetStatusFilter(filter)
		if f.size > 0 {
			s.SetPageSize(f.size)
		}
		s.Page = f.page - 1
	})
	if err := e.board.Refresh(ctx); err != nil {
		return viewstate.Snapshot{}, fail(err, "Failed to load tasks")
	}
	return e.board.Snapshot(), nil
}

func tasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and change tasks",
	}
	cmd.AddCommand(
		tasksListCmd(opts),
		tasksCreateCmd(opts),
		tasksEditCmd(opts),
		tasksCycleCmd(opts),
		tasksDeleteCmd(opts),
		tasksRestartCmd(opts),
	)
	return cmd
}

func tasksListCmd(opts *rootOptions) *cobra.Command {
	pf := &pageFlags{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show one page of tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				snap, err := pf.load(cmd.Context(), e)
				if err != nil {
					return err
				}
				renderTasks(cmd.OutOrStdout(), snap, time.Now())
				return nil
			})
		},
	}
	pf.register(cmd)
	return cmd
}

// renderTasks prints a page as a table followed by the pager line.
func renderTasks(w io.Writer, snap viewstate.Snapshot, now time.Time) {
	if len(snap.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "PRIORITY", "TITLE", "DUE", "CREATED BY")
	for _, task := range snap.Tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Date()
			if task.IsOverdue(now) {
				due += " (overdue)"
			}
		}
		t.Row(string(task.ID), task.Status.Label(), string(task.Priority.OrDefault()), task.Title, due, task.CreatedBy)
	}
	fmt.Fprintln(w, t.String())

	pages := snap.State.PageCount(snap.Total)
	fmt.Fprintf(w, "page %d of %d · %d total\n", snap.State.Page+1, pages, snap.Total)
}

// findTask scans the unfiltered listing for id.
func findTask(ctx context.Context, gw *tasks.Gateway, id string) (model.Task, error) {
	for page := 0; ; page++ {
		p, err := gw.GetAll(ctx, tasks.Query{Page: page, Size: lookupPageSize, Status: model.FilterAll})
		if err != nil {
			return model.Task{}, fail(err, "Failed to load tasks")
		}
		for _, t := range p.Content {
			if string(t.ID) == id {
				return t, nil
			}
		}
		if len(p.Content) == 0 || (page+1)*lookupPageSize >= p.TotalElements {
			return model.Task{}, fmt.Errorf("task %s not found", id)
		}
	}
}

type draftFlags struct {
	title       string
	description string
	priority    string
	status      string
	due         string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.description, "description", "", "Task description")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (high, medium, low)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (open, in-progress, in-review, on-hold, done, canceled); new tasks default to open")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date as YYYY-MM-DD (\"none\" clears it)")
}

// apply overlays the flags that were set on base.
func (f *draftFlags) apply(cmd *cobra.Command, base model.TaskDraft) (model.TaskDraft, error) {
	d := base
	flags := cmd.Flags()

	if flags.Changed("title") {
		d.Title = f.title
	}
	if flags.Changed("description") {
		d.Description = f.description
	}
	if flags.Changed("priority") {
		p, err := model.ParsePriority(f.priority)
		if err != nil {
			return d, err
		}
		d.Priority = p
	}
	if flags.Changed("status") {
		s, err := model.ParseStatus(f.status)
		if err != nil {
			return d, err
		}
		d.Status = s
	}
	if flags.Changed("due") {
		due, err := parseDue(f.due)
		if err != nil {
			return d, err
		}
		d.DueDate = due
	}
	return d, d.Validate()
}

func parseDue(raw string) (*model.Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, &model.ValidationError{Field: "dueDate", Message: "invalid date format, use YYYY-MM-DD"}
	}
	ts := model.NewTimestamp(t)
	return &ts, nil
}

func tasksCreateCmd(opts *rootOptions) *cobra.Command {
	df := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := df.apply(cmd, model.TaskDraft{})
			if err != nil {
				return fail(err, "Invalid task")
			}
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				created, err := e.service.Create(cmd.Context(), draft)
				if err != nil {
					return fail(err, "Failed to create task")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %q\n", created.ID, created.Title)
				return nil
			})
		},
	}
	df.register(cmd)
	return cmd
}

func tasksEditCmd(opts *rootOptions) *cobra.Command {
	df := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				t, err := findTask(cmd.Context(), e.tasks, args[0])
				if err != nil {
					return err
				}
				draft, err := df.apply(cmd, model.DraftFrom(t))
				if err != nil {
					return fail(err, "Invalid task")
				}
				updated, err := e.service.Edit(cmd.Context(), t, draft)
				if err != nil {
					return fail(err, "Failed to update task")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved task %s %q\n", updated.ID, updated.Title)
				return nil
			})
		},
	}
	df.register(cmd)
	return cmd
}

func tasksCycleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle <id>",
		Short: "Advance a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				t, err := findTask(cmd.Context(), e.tasks, args[0])
				if err != nil {
					return err
				}
				if !lifecycle.CanCycle(t) {
					return fmt.Errorf("%s tasks cannot be advanced", t.Status)
				}
				updated, err := e.service.CycleStatus(cmd.Context(), t)
				if err != nil {
					return fail(err, "Failed to update status")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", updated.Title, updated.Status)
				return nil
			})
		},
	}
}

func tasksDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				t, err := findTask(cmd.Context(), e.tasks, args[0])
				if err != nil {
					return err
				}
				c, err := e.service.RequestDelete(t)
				if err != nil {
					return err
				}
				return confirmPending(cmd, e, c, yes, fmt.Sprintf("Deleted task %s %q", t.ID, t.Title))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func tasksRestartCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restart <id>",
		Short: "Re-create a canceled task as a new open task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				t, err := findTask(cmd.Context(), e.tasks, args[0])
				if err != nil {
					return err
				}
				c, err := e.service.RequestRestart(t)
				if err != nil {
					return err
				}
				return confirmPending(cmd, e, c, yes, fmt.Sprintf("Restarted %q as a new open task", t.Title))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirmPending asks before running the staged action, unless yes is set.
func confirmPending(cmd *cobra.Command, e *env, c lifecycle.Confirmation, yes bool, done string) error {
	if !yes {
		ok := false
		err := huh.NewConfirm().
			Title(c.Prompt()).
			Affirmative("Yes").
			Negative("No").
			Value(&ok).
			Run()
		if err != nil {
			return err
		}
		if !ok {
			e.service.Cancel()
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled")
			return nil
		}
	}

	if err := e.service.Confirm(cmd.Context()); err != nil {
		return fail(err, "Failed to "+c.Kind.String()+" task")
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
