// Package cmd provides the CLI commands for deskctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotdeskhq/deskctl/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "deskctl",
	Short: "deskctl - HotDesk workspace booking client",
	Long: `deskctl is a command line client for the HotDesk workspace booking API.

It signs in with username/password credentials, keeps the cookie session
alive in the background, and transparently retries requests when the
session needs a refresh.

Quick start:
  1. Create a config file: deskctl.yaml with server.base_url
  2. Run: deskctl login

Configuration:
  Config is loaded from deskctl.yaml in the current directory,
  $HOME/.deskctl/, or /etc/deskctl/.

  Environment variables can override config values with the DESKCTL_ prefix.
  Example: DESKCTL_SERVER_BASE_URL=https://hotdesk.example.com

Commands:
  login       Sign in and store the session
  logout      Sign out and discard the session
  whoami      Show the signed-in user
  watch       Keep the session alive and report changes
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./deskctl.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
