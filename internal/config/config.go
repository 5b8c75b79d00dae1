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
	// Database
	SQLiteDBPath string

	// Default ledger user
	DefaultUser string

	// Statement scanning
	ScanTolerance float64
	ScanDayWindow int
	StatementDir  string

	// AMQP scan events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	WorkerInterval time.Duration

	// Bank feed sync gate
	SyncCooldown time.Duration

	// Forecast cache
	ForecastCacheSize int
	ForecastCacheTTL  time.Duration
}

func Load() *Config {
	cfg := &Config{
		SQLiteDBPath: getEnv("BUDGET_DB_PATH", "./data/budget.db"),
		DefaultUser:  getEnv("BUDGET_USER", "default"),

		ScanTolerance: getEnvFloat("SCAN_TOLERANCE", 0.1),
		ScanDayWindow: getEnvInt("SCAN_DAY_WINDOW", 0),
		StatementDir:  getEnv("STATEMENT_DIR", "./statements"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "scan_events"),

		WorkerInterval: getEnvDuration("WORKER_INTERVAL", time.Hour),

		SyncCooldown: getEnvDuration("SYNC_COOLDOWN", 24*time.Hour),

		ForecastCacheSize: getEnvInt("FORECAST_CACHE_SIZE", 128),
		ForecastCacheTTL:  getEnvDuration("FORECAST_CACHE_TTL", 5*time.Minute),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if c.DefaultUser == "" {
		errors = append(errors, "default user cannot be empty")
	}

	if c.ScanTolerance < 0 || c.ScanTolerance > 1 {
		errors = append(errors, fmt.Sprintf("invalid scan tolerance %v: must be a fraction between 0 and 1", c.ScanTolerance))
	}

	if c.ScanDayWindow < 0 || c.ScanDayWindow > 31 {
		errors = append(errors, fmt.Sprintf("invalid scan day window %d: must be between 0 and 31 days", c.ScanDayWindow))
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

	if c.WorkerInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid worker interval %v: must be at least 1 second", c.WorkerInterval))
	} else if c.WorkerInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid worker interval %v: must be at most 24 hours", c.WorkerInterval))
	}

	if c.SyncCooldown < 0 {
		errors = append(errors, fmt.Sprintf("invalid sync cooldown %v: must not be negative", c.SyncCooldown))
	}

	if c.ForecastCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid forecast cache size %d: must be at least 1", c.ForecastCacheSize))
	}
	if c.ForecastCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid forecast cache TTL %v: must be at least 1 second", c.ForecastCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
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
