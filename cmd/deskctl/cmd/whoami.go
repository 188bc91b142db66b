package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var whoamiOutput string

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the profile of the signed-in user.

Exits non-zero when no session exists.

Examples:
  deskctl whoami
  deskctl whoami --output json
  deskctl whoami --output yaml`,
	RunE: runWhoami,
}

func init() {
	whoamiCmd.Flags().StringVarP(&whoamiOutput, "output", "o", "text", "output format: text, json, or yaml")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := buildApp(false)
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.session.Bootstrap(cmd.Context()); err != nil {
		return err
	}

	snap := app.store.Snapshot()
	if !snap.Authenticated {
		app.close()
		fmt.Fprintln(os.Stderr, "Not logged in.")
		os.Exit(1)
	}

	profile := snap.Profile
	switch whoamiOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)

	case "yaml":
		data, err := yaml.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encoding profile: %w", err)
		}
		os.Stdout.Write(data)
		return nil

	case "text":
		fmt.Printf("Username: %s\n", profile.Username)
		fmt.Printf("Name:     %s\n", profile.FullName())
		fmt.Printf("Email:    %s\n", profile.Email)
		fmt.Printf("Role:     %s\n", profile.Role)
		if len(profile.Groups) > 0 {
			fmt.Printf("Groups:   %s\n", strings.Join(profile.Groups, ", "))
		}
		return nil

	default:
		return fmt.Errorf("unknown output format: %s", whoamiOutput)
	}
}
