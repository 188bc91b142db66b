package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the HotDesk backend with username and password.

The session cookies are stored on disk, so later deskctl invocations
reuse the session without asking for credentials again.

Examples:
  # Prompt for username and password
  deskctl login

  # Username from flag, password prompted
  deskctl login --username jdoe`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username to sign in with")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := buildApp(false)
	if err != nil {
		return err
	}
	defer app.close()

	ctx := cmd.Context()
	if err := app.session.Bootstrap(ctx); err != nil {
		return err
	}

	if snap := app.store.Snapshot(); snap.Authenticated {
		fmt.Printf("Already logged in as %s. Run 'deskctl logout' first to switch users.\n", snap.Profile.Username)
		return nil
	}

	username := loginUsername
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := app.session.Login(ctx, username, password); err != nil {
		if msg := app.store.Snapshot().ErrorMessage; msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	profile := app.store.Snapshot().Profile
	fmt.Printf("Logged in as %s (%s)\n", profile.FullName(), profile.Email)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	// Piped stdin (scripts, tests).
	return promptLine("")
}
