package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a starter launchpad.yaml with sensible defaults and a freshly
generated JWT secret.

Examples:
  launchpad init
  launchpad init --config /etc/launchpad/config.yaml`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

const configTemplate = `server:
  host: 0.0.0.0
  port: 8080
  read_timeout: 30s
  write_timeout: 30s

database:
  driver: sqlite
  dsn: launchpad.db
  # For DynamoDB instead:
  # driver: dynamodb
  # table: launchpad
  # region: us-east-1

auth:
  jwt_secret: %s
  key_prefix: lk_
  session_ttl: 720h

logging:
  level: info
  format: json

metrics:
  enabled: true
`

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}

	content := fmt.Sprintf(configTemplate, hex.EncodeToString(secret))
	if err := os.WriteFile(cfgFile, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", cfgFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  launchpad validate")
	fmt.Println("  launchpad serve")
	return nil
}
