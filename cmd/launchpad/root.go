package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Hypermedia account and credential service",
	Long: `Launchpad is a self-hosted account, session, and API key service
with a hypermedia API.

Every response is an application/hal+json document whose links and forms
tell the client what it can do next. Generic clients navigate entirely
through those affordances.

Quick start:
  launchpad init      # Write a starter config file
  launchpad serve     # Start the server

Management:
  launchpad validate  # Validate configuration
  launchpad version   # Print version information`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "launchpad.yaml", "config file path")
}
