package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the session",
	Long: `Sign out of the HotDesk backend.

The server-side session is invalidated and the stored cookies are
removed. If the server rejects the logout the local session is kept,
so a retry can still reach it.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := buildApp(false)
	if err != nil {
		return err
	}
	defer app.close()

	ctx := cmd.Context()
	if err := app.session.Bootstrap(ctx); err != nil {
		return err
	}

	if !app.store.Snapshot().Authenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := app.session.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out.")
	return nil
}
