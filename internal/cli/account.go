package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	username      string
	passwordStdin bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Username (prompted when empty)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
}

// resolve fills in missing credentials, prompting on the terminal unless
// the password comes from stdin.
func (f *credentialFlags) resolve(cmd *cobra.Command, confirm bool) (username, password, confirmation string, err error) {
	username = strings.TrimSpace(f.username)

	if f.passwordStdin {
		if username == "" {
			return "", "", "", errors.New("--username is required with --password-stdin")
		}
		password, err = readLine(cmd)
		return username, password, password, err
	}

	fields := []huh.Field{}
	if username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&username))
	}
	fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))
	if confirm {
		fields = append(fields, huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirmation))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(username), password, confirmation, nil
}

// readLine reads one line from the command's input.
func readLine(cmd *cobra.Command) (string, error) {
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input on stdin")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func loginCmd(opts *rootOptions) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, _, err := creds.resolve(cmd, false)
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(e *env) error {
				s, err := e.auth.Login(cmd.Context(), username, password)
				if err != nil {
					return fail(err, "Login failed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.Username, s.Role)
				return nil
			})
		},
	}
	creds.register(cmd)
	return cmd
}

func registerCmd(opts *rootOptions) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, confirmation, err := creds.resolve(cmd, true)
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(e *env) error {
				if err := e.auth.Register(cmd.Context(), username, password, confirmation); err != nil {
					return fail(err, "Registration failed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Sign in with: taskflow login -u %s\n", username, username)
				return nil
			})
		},
	}
	creds.register(cmd)
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				if err := e.auth.Logout(); err != nil {
					return fail(err, "Logout failed")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				s, ok, err := e.sessions.Current()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Username, s.Role)
				return nil
			})
		},
	}
}
