// Package config loads MapleBudget settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// HTTP Server
	Port               string `koanf:"PORT"`
	CookieSecure       bool   `koanf:"COOKIE_SECURE"`
	RateLimitPerMinute int    `koanf:"RATE_LIMIT_PER_MINUTE"`
	Timezone           string `koanf:"TIMEZONE"`

	// Remote budgeting API
	APIBaseURL     string        `koanf:"API_BASE_URL"`
	RequestTimeout time.Duration `koanf:"REQUEST_TIMEOUT"`

	// Sessions and activity storage
	DataBackend          string        `koanf:"DATA_BACKEND"`
	SQLiteDBPath         string        `koanf:"SQLITE_DB_PATH"`
	PostgresDSN          string        `koanf:"POSTGRES_DSN"`
	PostgresMaxPoolSize  int           `koanf:"POSTGRES_MAX_POOL_SIZE"`
	SessionTTL           time.Duration `koanf:"SESSION_TTL"`
	SessionPurgeInterval time.Duration `koanf:"SESSION_PURGE_INTERVAL"`

	// AMQP, optional for the web server
	AMQPURL      string `koanf:"AMQP_URL"`
	AMQPExchange string `koanf:"AMQP_EXCHANGE"`
	AMQPQueue    string `koanf:"AMQP_QUEUE"`

	// Snapshot cache
	CacheBackend string        `koanf:"CACHE_BACKEND"`
	CacheTTL     time.Duration `koanf:"CACHE_TTL"`
	CacheSize    int           `koanf:"CACHE_SIZE"`

	// Google Sheets export, optional
	GoogleSpreadsheetID      string `koanf:"GOOGLE_SPREADSHEET_ID"`
	GoogleServiceAccountJSON string `koanf:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `koanf:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	SheetsExportTab          string `koanf:"SHEETS_EXPORT_TAB"`

	// Logging
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Defaults returns the configuration used for every unset variable.
func Defaults() Config {
	return Config{
		Port:                 "8081",
		RateLimitPerMinute:   120,
		Timezone:             "Local",
		APIBaseURL:           "http://localhost:8000",
		RequestTimeout:       15 * time.Second,
		DataBackend:          "memory",
		SQLiteDBPath:         "./data/maplebudget.db",
		PostgresMaxPoolSize:  10,
		SessionTTL:           7 * 24 * time.Hour,
		SessionPurgeInterval: time.Hour,
		AMQPExchange:         "maplebudget",
		AMQPQueue:            "activity",
		CacheBackend:         "lru",
		CacheTTL:             30 * time.Second,
		CacheSize:            256,
		SheetsExportTab:      "Export",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load reads .env (when present) and the process environment. Empty
// variables keep their default.
func Load() (*Config, error) {
	// .env is a local development convenience; its absence is not an error
	_ = godotenv.Load()

	k := koanf.New(".")
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, strings.TrimSpace(value)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.DataBackend = strings.ToLower(cfg.DataBackend)
	cfg.CacheBackend = strings.ToLower(cfg.CacheBackend)
	return &cfg, nil
}

// Location resolves Timezone. Validate has already rejected unknown names.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.APIBaseURL); err != nil || c.APIBaseURL == "" {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	}

	validBackends := []string{"memory", "sqlite", "postgres"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "Postgres DSN cannot be empty when using postgres backend")
		}
		if c.PostgresMaxPoolSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid postgres pool size %d: must be at least 1", c.PostgresMaxPoolSize))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.CacheBackend {
	case "lru", "ristretto", "none":
	default:
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of [lru ristretto none]", c.CacheBackend))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionPurgeInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid session purge interval %v: must be at least 1 second", c.SessionPurgeInterval))
	} else if c.SessionPurgeInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session purge interval %v: must be at most 24 hours", c.SessionPurgeInterval))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
		}
	}

	if c.SheetsEnabled() {
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
		if c.SheetsExportTab == "" {
			errors = append(errors, "Sheets export tab cannot be empty when GOOGLE_SPREADSHEET_ID is provided")
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
