package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/launchpad/bootstrap"
	"github.com/artpar/launchpad/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Launchpad server.

The server will:
  - Load configuration from launchpad.yaml (or --config)
  - Or load configuration from LAUNCHPAD_* environment variables
  - Connect to the storage backend (sqlite or dynamodb)
  - Serve the hypermedia API

Environment variables (for Docker deployments):
  LAUNCHPAD_DATABASE_DRIVER  - sqlite or dynamodb
  LAUNCHPAD_DATABASE_DSN     - SQLite file path (default: launchpad.db)
  LAUNCHPAD_DATABASE_TABLE   - DynamoDB table name
  LAUNCHPAD_SERVER_PORT      - Server port (default: 8080)
  LAUNCHPAD_AUTH_JWT_SECRET  - Secret for bearer token verification
  LAUNCHPAD_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  launchpad serve
  launchpad serve --config /etc/launchpad/config.yaml
  launchpad serve --hot-reload=false

  # Docker (env vars only):
  LAUNCHPAD_DATABASE_DSN=/data/launchpad.db launchpad serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		app, err = bootstrap.NewWithHotReload(cfgFile, zerolog.New(os.Stdout).With().Timestamp().Logger())
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}

		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}

		app, err = bootstrap.New(cfg)
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
