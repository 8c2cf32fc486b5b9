package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "licensedesk.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "LICENSEDESK_PORT")
	setString(&cfg.Server.CORSOrigin, "LICENSEDESK_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "LICENSEDESK_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "LICENSEDESK_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "LICENSEDESK_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "LICENSEDESK_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "LICENSEDESK_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.Auth.Enabled, "LICENSEDESK_AUTH_ENABLED")
	setString(&cfg.Auth.GoogleClientID, "LICENSEDESK_GOOGLE_CLIENT_ID")
	setString(&cfg.Auth.MasterEmail, "LICENSEDESK_MASTER_EMAIL")
	setDuration(&cfg.Auth.SessionTTL, "LICENSEDESK_SESSION_TTL")
	setDuration(&cfg.Auth.SweepInterval, "LICENSEDESK_SWEEP_INTERVAL")
	setInt64(&cfg.Cache.MaxSizeMB, "LICENSEDESK_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TokenTTL, "LICENSEDESK_CACHE_TOKEN_TTL")
	setString(&cfg.Logging.Level, "LICENSEDESK_LOG_LEVEL")
	setString(&cfg.Logging.Service, "LICENSEDESK_LOG_SERVICE")
	setBool(&cfg.Telemetry.Enabled, "LICENSEDESK_OTEL_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate rejects configurations the service cannot start with.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres dsn must not be empty")
	}
	if cfg.Postgres.MaxConns < cfg.Postgres.MinConns {
		return fmt.Errorf("postgres max_conns (%d) must be >= min_conns (%d)",
			cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	}
	if cfg.Auth.Enabled {
		if cfg.Auth.MasterEmail == "" {
			return errors.New("auth master_email must not be empty when auth is enabled")
		}
		if cfg.Auth.GoogleClientID == "" {
			return errors.New("auth google_client_id must not be empty when auth is enabled")
		}
		if cfg.Auth.SessionTTL <= 0 {
			return errors.New("auth session_ttl must be positive")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(parsed)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
