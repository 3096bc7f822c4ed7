// Package cli implements the taskflow command line. Without a subcommand
// it starts the interactive dashboard.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/app"
	"github.com/nhle/taskflow/internal/model"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the taskflow command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - manage tasks from the terminal",
		Long: `TaskFlow is a terminal client for the task service.

Run without arguments to open the dashboard, or use the subcommands
for scripting.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "Path to the config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		loginCmd(opts),
		registerCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		tasksCmd(opts),
		exportCmd(opts),
		themeCmd(opts),
		profileCmd(opts),
		configCmd(opts),
		devserverCmd(opts),
	)
	return root
}

// Execute runs the root command and prints any error.
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// runDashboard starts the Bubble Tea program.
func runDashboard(opts *rootOptions) error {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, logFile, err := openLogFile(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	e, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer e.close()

	exporter, err := e.exporter("", cfg.Export.Mailbox.Enabled)
	if err != nil {
		return err
	}

	m := app.New(app.Deps{
		Auth:      e.auth,
		Session:   e.sessions,
		Board:     e.board,
		Service:   e.service,
		Exporter:  exporter,
		PageSizes: cfg.Display.PageSizeOptions,
		Logger:    logger,
	})

	logger.Info("dashboard starting", "api", cfg.API.BaseURL)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// failure carries the text shown for err while keeping err in the chain.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

// fail maps err to a user-facing error. Errors that carry no message of
// their own are reported as "fallback: err".
func fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	msg := api.UserMessage(err, fallback)
	if msg == fallback {
		msg = fallback + ": " + err.Error()
	}
	return &failure{msg: msg, err: err}
}
