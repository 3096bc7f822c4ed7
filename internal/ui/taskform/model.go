package taskform

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// dateLayout is the due date format accepted by the form.
const dateLayout = "2006-01-02"

// Mode selects what the form does on submit.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeView
)

// SubmittedMsg is dispatched when a create or edit form is completed.
// Task is the task being edited (zero for create).
type SubmittedMsg struct {
	Mode  Mode
	Task  model.Task
	Draft model.TaskDraft
}

// CancelMsg is dispatched when the form is closed without submitting.
type CancelMsg struct{}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	status      model.Status
	dueDate     string
}

// Model is the Bubble Tea model for the task create/edit/view form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    Mode
	task    model.Task
	failure string
	width   int
	height  int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, status: model.StatusOpen},
		width:  width,
		height: height,
	}
}

// Mode reports the mode of the last Start call.
func (m Model) Mode() Mode {
	return m.mode
}

// StartCreate initializes an empty form for a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.mode = ModeCreate
	m.task = model.Task{}
	m.failure = ""
	*m.fb = formBindings{priority: model.PriorityMedium, status: model.StatusOpen}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit opens t for editing, or read-only when t may not be edited.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.mode = ModeEdit
	if t.ReadOnly() {
		m.mode = ModeView
	}
	m.task = t
	m.failure = ""
	*m.fb = formBindings{
		title:       t.Title,
		description: t.Description,
		priority:    t.Priority.OrDefault(),
		status:      t.Status,
	}
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.Date()
	}

	if m.mode == ModeView {
		m.form = m.buildViewForm()
	} else {
		m.form = m.buildForm()
	}
	return m.form.Init()
}

// Failure returns the validation message from the last rejected submit.
func (m Model) Failure() string {
	return m.failure
}

// Update handles messages for the task form. A submit that fails
// validation reopens the form with the entered values and the message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, cancel
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.mode == ModeView {
			m.form = nil
			return m, cancel
		}
		submitted, err := m.submit()
		if err != nil {
			m.failure = err.Error()
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				m.failure = verr.Message
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.form = nil
		m.failure = ""
		return m, submitted
	case huh.StateAborted:
		m.form = nil
		return m, cancel
	}

	return m, cmd
}

func cancel() tea.Msg { return CancelMsg{} }

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	var heading string
	switch m.mode {
	case ModeCreate:
		heading = "New Task"
	case ModeEdit:
		heading = "Edit Task"
	default:
		heading = "Task (read only)"
	}

	content := theme.TitleStyle.Render(heading) + "\n" + m.form.View()
	if m.failure != "" {
		content += "\n" + theme.ErrorStyle.Render(m.failure)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(priorityOptions()...).
			Value(&m.fb.priority),
		huh.NewSelect[model.Status]().
			Title("Status").
			Options(statusOptions()...).
			Value(&m.fb.status),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildViewForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(m.task.Title).
				Description(describe(m.task)).
				Next(true).
				NextLabel("Close"),
		),
	).WithWidth(m.formWidth())
}

// describe lists a task's fields for the read-only view.
func describe(t model.Task) string {
	due := "none"
	if t.DueDate != nil && t.DueDate.String() != "" {
		due = t.DueDate.Date()
	}
	lines := []string{
		"Status: " + string(t.Status),
		"Priority: " + string(t.Priority.OrDefault()),
		"Due: " + due,
		"Created by: " + t.CreatedBy,
		"Modified by: " + t.ModifiedBy,
	}
	if t.Description != "" {
		lines = append(lines, "", t.Description)
	}
	return strings.Join(lines, "\n")
}

func priorityOptions() []huh.Option[model.Priority] {
	opts := make([]huh.Option[model.Priority], 0, len(model.AllPriorities))
	for _, p := range model.AllPriorities {
		opts = append(opts, huh.NewOption(string(p), p))
	}
	return opts
}

func statusOptions() []huh.Option[model.Status] {
	opts := make([]huh.Option[model.Status], 0, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		opts = append(opts, huh.NewOption(string(s), s))
	}
	return opts
}

// Draft converts the current field values into a TaskDraft.
func (m Model) Draft() (model.TaskDraft, error) {
	draft := model.TaskDraft{
		Title:       strings.TrimSpace(m.fb.title),
		Description: m.fb.description,
		Priority:    m.fb.priority,
		Status:      m.fb.status,
	}

	due, err := m.dueDate()
	if err != nil {
		return model.TaskDraft{}, err
	}
	draft.DueDate = due

	if err := draft.Validate(); err != nil {
		return model.TaskDraft{}, err
	}
	return draft, nil
}

// dueDate parses the due date field. An unchanged date keeps the task's
// original timestamp so its time of day survives the round trip.
func (m Model) dueDate() (*model.Timestamp, error) {
	raw := strings.TrimSpace(m.fb.dueDate)
	if raw == "" {
		return nil, nil
	}
	if orig := m.task.DueDate; orig != nil && orig.Date() == raw {
		return orig, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, &model.ValidationError{Field: "dueDate", Message: "invalid date format, use YYYY-MM-DD"}
	}
	ts := model.NewTimestamp(t)
	return &ts, nil
}

func (m Model) submit() (tea.Cmd, error) {
	draft, err := m.Draft()
	if err != nil {
		return nil, err
	}
	msg := SubmittedMsg{Mode: m.mode, Task: m.task, Draft: draft}
	return func() tea.Msg { return msg }, nil
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
