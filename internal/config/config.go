package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (notification fan-out; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Exchange-rate provider
	RateProviderURL  string
	RateProviderKey  string
	RatePivot        string
	RateRefreshEvery time.Duration

	// Reporting
	ReportingCurrency string

	// Job worker intervals
	ReminderCheckEvery time.Duration
	DailyJobEvery      time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finwise.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		RateProviderURL:  getEnv("EXCHANGE_RATE_API_URL", ""),
		RateProviderKey:  getEnv("EXCHANGE_RATE_API_KEY", ""),
		RatePivot:        getEnv("RATE_PIVOT_CURRENCY", "EUR"),
		RateRefreshEvery: getEnvDuration("RATE_REFRESH_INTERVAL", time.Hour),

		ReportingCurrency: getEnv("REPORTING_CURRENCY", "USD"),

		ReminderCheckEvery: getEnvDuration("REMINDER_CHECK_INTERVAL", time.Hour),
		DailyJobEvery:      getEnvDuration("DAILY_JOB_INTERVAL", 24*time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateProviderURL != "" {
		if parsedURL, err := url.Parse(c.RateProviderURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid exchange-rate provider URL '%s': %v", c.RateProviderURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			problems = append(problems, fmt.Sprintf("invalid exchange-rate provider URL scheme '%s'", parsedURL.Scheme))
		}
	}

	if !isCurrencyCode(c.RatePivot) {
		problems = append(problems, fmt.Sprintf("invalid pivot currency '%s': must be a 3-letter code", c.RatePivot))
	}
	if !isCurrencyCode(c.ReportingCurrency) {
		problems = append(problems, fmt.Sprintf("invalid reporting currency '%s': must be a 3-letter code", c.ReportingCurrency))
	}

	if c.RateRefreshEvery < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid rate refresh interval %v: must be at least 1 minute", c.RateRefreshEvery))
	}
	if c.ReminderCheckEvery < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid reminder check interval %v: must be at least 1 minute", c.ReminderCheckEvery))
	}
	if c.DailyJobEvery < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid daily job interval %v: must be at least 1 minute", c.DailyJobEvery))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
