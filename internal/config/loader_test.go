package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "licensedesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Defaults enable auth without a client ID, so sign-in config is the
	// one thing a bare environment must supply.
	t.Setenv("LICENSEDESK_AUTH_ENABLED", "false")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Postgres.MaxConns != 10 || cfg.Postgres.MinConns != 2 {
		t.Errorf("pool = %d/%d, want 10/2", cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("NATS URL = %q", cfg.NATS.URL)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %v, want 12h", cfg.Auth.SessionTTL)
	}
	if cfg.Cache.TokenTTL != 5*time.Minute {
		t.Errorf("TokenTTL = %v, want 5m", cfg.Cache.TokenTTL)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
server:
  port: "9090"
auth:
  enabled: true
  google_client_id: yaml-client-id
  master_email: boss@example.com
logging:
  level: debug
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.GoogleClientID != "yaml-client-id" {
		t.Errorf("GoogleClientID = %q", cfg.Auth.GoogleClientID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.MaxConns != 10 {
		t.Errorf("MaxConns = %d, want default 10", cfg.Postgres.MaxConns)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
server:
  port: "9090"
auth:
  enabled: false
`)

	t.Setenv("LICENSEDESK_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/envdb")
	t.Setenv("NATS_URL", "nats://env-host:4222")
	t.Setenv("LICENSEDESK_SESSION_TTL", "30m")
	t.Setenv("LICENSEDESK_PG_MAX_CONNS", "25")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Port = %q, want env 7070", cfg.Server.Port)
	}
	if cfg.Postgres.DSN != "postgres://env-host:5432/envdb" {
		t.Errorf("DSN = %q", cfg.Postgres.DSN)
	}
	if cfg.NATS.URL != "nats://env-host:4222" {
		t.Errorf("NATS URL = %q", cfg.NATS.URL)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.Auth.SessionTTL)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("MaxConns = %d, want 25", cfg.Postgres.MaxConns)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeYAML(t, "server: [not a map")

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "port",
		},
		{
			name:    "empty dsn",
			mutate:  func(c *Config) { c.Postgres.DSN = "" },
			wantErr: "dsn",
		},
		{
			name:    "pool bounds inverted",
			mutate:  func(c *Config) { c.Postgres.MaxConns = 1; c.Postgres.MinConns = 5 },
			wantErr: "max_conns",
		},
		{
			name: "auth enabled without client id",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.GoogleClientID = ""
			},
			wantErr: "google_client_id",
		},
		{
			name: "auth enabled without master email",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.GoogleClientID = "cid"
				c.Auth.MasterEmail = ""
			},
			wantErr: "master_email",
		},
		{
			name: "auth enabled with zero ttl",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.GoogleClientID = "cid"
				c.Auth.SessionTTL = 0
			},
			wantErr: "session_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.Enabled = false
			tt.mutate(&cfg)

			err := validate(&cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
