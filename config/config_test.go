package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
database:
  driver: sqlite
  dsn: /tmp/test.db
auth:
  key_prefix: tk_
  session_ttl: 1h
logging:
  level: debug
  format: console
metrics:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %s:%d, want 127.0.0.1:9090", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Database.DSN != "/tmp/test.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Auth.KeyPrefix != "tk_" || cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Auth.KeyPrefix != "lk_" {
		t.Errorf("default key prefix = %q, want lk_", cfg.Auth.KeyPrefix)
	}
	if cfg.Auth.SessionTTL != 30*24*time.Hour {
		t.Errorf("default session ttl = %v", cfg.Auth.SessionTTL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/lib/launchpad.db")
	cfg, err := Load(writeConfig(t, "database:\n  dsn: ${TEST_DB_PATH}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "/var/lib/launchpad.db" {
		t.Errorf("dsn = %q, want expanded env value", cfg.Database.DSN)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LAUNCHPAD_SERVER_PORT", "3000")
	t.Setenv("LAUNCHPAD_DATABASE_DRIVER", "dynamodb")
	t.Setenv("LAUNCHPAD_DATABASE_TABLE", "launchpad-prod")
	t.Setenv("LAUNCHPAD_AUTH_SESSION_TTL", "12h")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want env override 3000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "dynamodb" || cfg.Database.Table != "launchpad-prod" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("session ttl = %v, want 12h", cfg.Auth.SessionTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LAUNCHPAD_SERVER_HOST", "10.0.0.1")
	t.Setenv("LAUNCHPAD_METRICS_ENABLED", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Host != "10.0.0.1" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled")
	}
}

func TestLoadWithFallback(t *testing.T) {
	cfg, err := LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("fallback port = %d, want 8080", cfg.Server.Port)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad driver", "database:\n  driver: postgres\n", "database.driver"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad level", "logging:\n  level: verbose\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() should fail on missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [not a map")); err == nil {
		t.Fatal("Load() should fail on malformed yaml")
	}
}
