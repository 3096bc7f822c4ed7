// Package settings is the interactive editor for the configuration file.
package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/taskflow/internal/model"
)

// formBindings holds field values on the heap so that huh's Value()
// pointers stay valid.
type formBindings struct {
	baseURL  string
	timeout  string
	pageSize string
	dir      string

	mailboxEnabled bool
	host           string
	port           string
	username       string
	mailbox        string
	from           string
	tls            bool
	password       string
}

// Editor edits a copy of the configuration.
type Editor struct {
	cfg model.AppConfig
	fb  *formBindings
}

// New returns an editor pre-filled from cfg.
func New(cfg model.AppConfig) *Editor {
	mb := cfg.Export.Mailbox
	return &Editor{
		cfg: cfg,
		fb: &formBindings{
			baseURL:        cfg.API.BaseURL,
			timeout:        strconv.Itoa(cfg.API.TimeoutSec),
			pageSize:       strconv.Itoa(cfg.Display.PageSize),
			dir:            cfg.Export.Dir,
			mailboxEnabled: mb.Enabled,
			host:           mb.Host,
			port:           mb.Port,
			username:       mb.Username,
			mailbox:        mb.Mailbox,
			from:           mb.From,
			tls:            mb.TLS,
		},
	}
}

// Form builds the huh form. The mailbox group is skipped while mailbox
// delivery is disabled.
func (e *Editor) Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Root of the task service, including /api").
				Placeholder("http://localhost:8080/api").
				Value(&e.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout").
				Description("Seconds before a request is abandoned").
				Value(&e.fb.timeout).
				Validate(validatePositive("Timeout")),
			huh.NewInput().
				Title("Page size").
				Description("Tasks per page on the board").
				Value(&e.fb.pageSize).
				Validate(validatePositive("Page size")),
		).Title("Service"),
		huh.NewGroup(
			huh.NewInput().
				Title("Export directory").
				Placeholder(".").
				Value(&e.fb.dir),
			huh.NewConfirm().
				Title("Deliver exports to a mailbox").
				Affirmative("Yes").
				Negative("No").
				Value(&e.fb.mailboxEnabled),
		).Title("Export"),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&e.fb.host).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&e.fb.port).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&e.fb.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Leave empty to keep the stored password").
				EchoMode(huh.EchoModePassword).
				Value(&e.fb.password),
			huh.NewInput().
				Title("Mailbox").
				Placeholder("Drafts").
				Value(&e.fb.mailbox),
			huh.NewInput().
				Title("From").
				Placeholder("user@example.com").
				Value(&e.fb.from),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&e.fb.tls),
		).Title("Mailbox").WithHideFunc(func() bool { return !e.fb.mailboxEnabled }),
	)
}

// Result returns the edited configuration and the new mailbox password,
// which is empty when unchanged.
func (e *Editor) Result() (model.AppConfig, string, error) {
	if err := validateURL(e.fb.baseURL); err != nil {
		return model.AppConfig{}, "", err
	}
	timeout, err := positive("Timeout", e.fb.timeout)
	if err != nil {
		return model.AppConfig{}, "", err
	}
	size, err := positive("Page size", e.fb.pageSize)
	if err != nil {
		return model.AppConfig{}, "", err
	}

	cfg := e.cfg
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(e.fb.baseURL), "/")
	cfg.API.TimeoutSec = timeout
	cfg.Display.PageSize = size
	cfg.Export.Dir = strings.TrimSpace(e.fb.dir)
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}

	cfg.Export.Mailbox.Enabled = e.fb.mailboxEnabled
	if e.fb.mailboxEnabled {
		if err := validateRequired("IMAP Host")(e.fb.host); err != nil {
			return model.AppConfig{}, "", err
		}
		if err := validatePort(e.fb.port); err != nil {
			return model.AppConfig{}, "", err
		}
		cfg.Export.Mailbox.Host = strings.TrimSpace(e.fb.host)
		cfg.Export.Mailbox.Port = strings.TrimSpace(e.fb.port)
		cfg.Export.Mailbox.Username = strings.TrimSpace(e.fb.username)
		cfg.Export.Mailbox.Mailbox = strings.TrimSpace(e.fb.mailbox)
		cfg.Export.Mailbox.From = strings.TrimSpace(e.fb.from)
		cfg.Export.Mailbox.TLS = e.fb.tls
	}
	return cfg, e.fb.password, nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8080/api)")
	}
	return nil
}

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("port is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		_, err := positive(fieldName, s)
		return err
	}
}

func positive(fieldName, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", fieldName)
	}
	return n, nil
}
