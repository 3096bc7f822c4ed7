package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/export"
	"github.com/nhle/taskflow/internal/lifecycle"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/internal/tasks"
	"github.com/nhle/taskflow/internal/viewstate"
)

// env holds the collaborators wired for one command invocation.
type env struct {
	cfg      *model.AppConfig
	logger   *slog.Logger
	kv       *store.Routed
	sessions *session.Provider
	auth     *auth.Gateway
	tasks    *tasks.Gateway
	board    *viewstate.Board
	service  *lifecycle.Service
	closers  []func() error
}

// withEnv opens the stores, runs fn and closes everything again. CLI
// commands log to stderr.
func withEnv(cmd *cobra.Command, opts *rootOptions, fn func(e *env) error) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	e, err := openEnv(opts.configPath, logger)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

// openEnv loads configuration and wires every gateway on top of it.
func openEnv(configPath string, logger *slog.Logger) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return wire(cfg, logger)
}

func wire(cfg *model.AppConfig, logger *slog.Logger) (*env, error) {
	ring, err := credential.Open(credential.Options{
		FileDir: cfg.Storage.KeyringDir,
		Backend: cfg.Storage.KeyringBackend,
	})
	if err != nil {
		return nil, err
	}

	prefs, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	kv := store.NewRouted(credential.NewStore(ring), prefs)
	sessions := session.NewProvider(kv)
	client := api.NewClient(cfg.API.BaseURL, sessions,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
		api.WithLogger(logger),
	)
	gw := tasks.NewGateway(client, logger)
	board := viewstate.NewBoard(gw, cfg.Display.PageSize, logger)

	return &env{
		cfg:      cfg,
		logger:   logger,
		kv:       kv,
		sessions: sessions,
		auth:     auth.NewGateway(client, sessions, logger),
		tasks:    gw,
		board:    board,
		service:  lifecycle.NewService(gw, sessions, board, logger),
		closers:  []func() error{prefs.Close},
	}, nil
}

func (e *env) close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			e.logger.Warn("closing", "error", err)
		}
	}
}

// exporter returns an exporter delivering to dir, or to the configured
// IMAP mailbox when mailbox is set.
func (e *env) exporter(dir string, mailbox bool) (*export.Exporter, error) {
	if !mailbox {
		if dir == "" {
			dir = e.cfg.Export.Dir
		}
		return export.NewExporter(export.DirSink{Dir: dir}, time.Now, e.logger), nil
	}

	mb := e.cfg.Export.Mailbox
	if mb.Host == "" || mb.Username == "" {
		return nil, errors.New("mailbox export is not configured (export.mailbox.host and username)")
	}
	password, err := e.kv.Get(model.KeyMailboxPassword)
	if errors.Is(err, store.ErrNotFound) || (err == nil && password == "") {
		return nil, errors.New("no mailbox password stored, run: taskflow config mailbox-password")
	}
	if err != nil {
		return nil, fmt.Errorf("reading mailbox password: %w", err)
	}
	return export.NewExporter(export.NewMailboxSink(mb, password), time.Now, e.logger), nil
}

// requireSession fails when nobody is signed in.
func (e *env) requireSession() (model.Session, error) {
	s, ok, err := e.sessions.Current()
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, errors.New("not signed in, run: taskflow login")
	}
	return s, nil
}

// openLogFile returns a file logger for the TUI, which owns the terminal.
func openLogFile(cfg model.LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}
