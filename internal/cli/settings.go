package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/export"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/ui/settings"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	pf := &pageFlags{}
	var (
		dir     string
		mailbox bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one page of tasks as CSV",
		Long: `Export the selected page of tasks as a CSV document.

The file is written to --dir (export.dir by default), or appended to the
configured IMAP mailbox with --mailbox.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				exporter, err := e.exporter(dir, mailbox)
				if err != nil {
					return err
				}
				snap, err := pf.load(cmd.Context(), e)
				if err != nil {
					return err
				}
				res, err := exporter.Export(cmd.Context(), snap.Tasks)
				if errors.Is(err, export.ErrNothingToExport) {
					return errors.New("nothing to export: the selected page is empty")
				}
				if err != nil {
					return fail(err, "Export failed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", res.Rows, res.Location)
				return nil
			})
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write the CSV file to")
	cmd.Flags().BoolVar(&mailbox, "mailbox", false, "Deliver to the configured IMAP mailbox")
	return cmd
}

func themeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show, set or toggle the dashboard theme",
		Long:      "With no argument the theme is toggled between light and dark.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				var mode model.ThemeMode
				if len(args) == 0 {
					next, err := e.sessions.ToggleTheme()
					if err != nil {
						return fail(err, "Could not save theme")
					}
					mode = next
				} else {
					mode = model.ThemeMode(strings.ToLower(args[0]))
					if mode != model.ThemeLight && mode != model.ThemeDark {
						return fmt.Errorf("unknown theme %q (use light or dark)", args[0])
					}
					if err := e.sessions.SetThemeMode(mode); err != nil {
						return fail(err, "Could not save theme")
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", mode)
				return nil
			})
		},
	}
}

func profileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the local profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <name>",
		Short: "Change the display name stamped on task changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withEnv(cmd, opts, func(e *env) error {
				if _, err := e.requireSession(); err != nil {
					return err
				}
				if err := e.sessions.Rename(name); err != nil {
					return fail(err, "Could not rename profile")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Display name changed to %s\n", strings.TrimSpace(name))
				return nil
			})
		},
	})
	return cmd
}

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			}
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := model.SaveConfig(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			editor := settings.New(*cfg)
			if err := editor.Form().Run(); err != nil {
				return err
			}
			edited, password, err := editor.Result()
			if err != nil {
				return err
			}
			if err := model.SaveConfig(opts.configPath, &edited); err != nil {
				return err
			}
			if password != "" {
				err := withEnv(cmd, opts, func(e *env) error {
					return e.kv.Set(model.KeyMailboxPassword, password)
				})
				if err != nil {
					return fmt.Errorf("storing mailbox password: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
		},
	}

	var fromStdin bool
	passwordCmd := &cobra.Command{
		Use:   "mailbox-password",
		Short: "Store the IMAP password used by mailbox exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var password string
			if fromStdin {
				p, err := readLine(cmd)
				if err != nil {
					return err
				}
				password = p
			} else {
				err := huh.NewInput().
					Title("Mailbox password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Run()
				if err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("password is empty")
			}
			return withEnv(cmd, opts, func(e *env) error {
				if err := e.kv.Set(model.KeyMailboxPassword, password); err != nil {
					return fmt.Errorf("storing mailbox password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Mailbox password stored")
				return nil
			})
		},
	}
	passwordCmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the password from stdin")

	cmd.AddCommand(initCmd, editCmd, pathCmd, passwordCmd)
	return cmd
}
