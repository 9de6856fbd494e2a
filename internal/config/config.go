// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// HTTP Server
	Port string `env:"PORT" envDefault:"8081"`
	// Mutating requests allowed per client per minute
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	// CIDRs whose X-Forwarded-For header is trusted
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Backend selection
	DataBackend  string `env:"DATA_BACKEND" envDefault:"memory"`
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/fortis.db"`

	// AMQP, optional. Empty URL disables event publishing.
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"fortis.ledger"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"weekly_reports"`

	// Google Sheets report export
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleReportSheet        string `env:"GOOGLE_REPORT_SHEET" envDefault:"Weekly"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Worker
	ResetSweepInterval   time.Duration `env:"RESET_SWEEP_INTERVAL" envDefault:"1h"`
	WeeklyReportInterval time.Duration `env:"WEEKLY_REPORT_INTERVAL" envDefault:"168h"`

	// Alert feed sessions
	SeenSessionTTL time.Duration `env:"SEEN_SESSION_TTL" envDefault:"12h"`
	SeenSessionMax int           `env:"SEEN_SESSION_MAX" envDefault:"10000"`

	ArchiveAfterDays int `env:"ARCHIVE_AFTER_DAYS" envDefault:"90"`
}

// Load parses the environment. Malformed values are reported as errors.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
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
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.ResetSweepInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reset sweep interval %v: must be at least 1 second", c.ResetSweepInterval))
	}
	if c.WeeklyReportInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid weekly report interval %v: must be at least 1 minute", c.WeeklyReportInterval))
	}
	if c.SeenSessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid seen session TTL %v: must be at least 1 minute", c.SeenSessionTTL))
	}
	if c.SeenSessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid seen session max %d: must be at least 1", c.SeenSessionMax))
	}
	if c.ArchiveAfterDays < 1 {
		errors = append(errors, fmt.Sprintf("invalid archive threshold %d days: must be at least 1", c.ArchiveAfterDays))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateExporter checks the settings the report exporter needs on top of
// Validate.
func (c *Config) ValidateExporter() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the report exporter")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty for the report exporter")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the report exporter")
	}
	if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
