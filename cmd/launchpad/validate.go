package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/launchpad/adapters/sqlite"
	"github.com/artpar/launchpad/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the Launchpad configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Database is writable (optional, sqlite only)

Examples:
  launchpad validate
  launchpad validate --config /etc/launchpad/config.yaml`,
	RunE: runValidate,
}

var (
	validateCheckDatabase bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	// Show config summary
	fmt.Printf("  %s Server: %s:%d\n", checkMark, cfg.Server.Host, cfg.Server.Port)
	switch cfg.Database.Driver {
	case "sqlite":
		fmt.Printf("  %s Database: %s (sqlite)\n", checkMark, cfg.Database.DSN)
	case "dynamodb":
		fmt.Printf("  %s Database: %s in %s (dynamodb)\n", checkMark, cfg.Database.Table, cfg.Database.Region)
	}
	fmt.Printf("  %s Key prefix: %s\n", checkMark, cfg.Auth.KeyPrefix)
	if cfg.Auth.JWTSecret == "" {
		fmt.Printf("  %s Bearer tokens disabled (no jwt_secret)\n", checkMark)
	}

	// Optional: check database
	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
