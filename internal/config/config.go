// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/analytics"
	"github.com/matthewbaird/insights/internal/reasoning"
	"github.com/matthewbaird/insights/internal/turnover"
)

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLiteDSN is used when DATABASE_DRIVER=sqlite and no DATABASE_URL
// is set.
const DefaultSQLiteDSN = "file:insights.db?_pragma=foreign_keys(1)"

// Config holds application configuration.
type Config struct {
	Port           int
	DatabaseDriver string
	DatabaseURL    string
	LogLevel       string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	ReasoningTimeout time.Duration

	MaxConcurrentAssessments int
	PolicyFile               string

	// SweepSchedule is a cron expression; empty disables the sweep.
	SweepSchedule  string
	SweepLandlords []string

	SeedDemo bool
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverMemory)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", reasoning.DefaultModel),
		PolicyFile:     getEnv("POLICY_FILE", ""),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", ""),
		SweepLandlords: splitList(getEnv("SWEEP_LANDLORDS", "")),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		errs = append(errs, fmt.Errorf("PORT: %w", err))
	}
	if cfg.ReasoningTimeout, err = time.ParseDuration(getEnv("REASONING_TIMEOUT", turnover.DefaultTimeout.String())); err != nil {
		errs = append(errs, fmt.Errorf("REASONING_TIMEOUT: %w", err))
	} else if cfg.ReasoningTimeout <= 0 {
		errs = append(errs, errors.New("REASONING_TIMEOUT must be positive"))
	}
	if cfg.MaxConcurrentAssessments, err = strconv.Atoi(getEnv("MAX_CONCURRENT_ASSESSMENTS", strconv.Itoa(analytics.DefaultMaxConcurrentAssessments))); err != nil {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENT_ASSESSMENTS: %w", err))
	} else if cfg.MaxConcurrentAssessments < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENT_ASSESSMENTS must be at least 1"))
	}
	if cfg.SeedDemo, err = strconv.ParseBool(getEnv("SEED_DEMO", strconv.FormatBool(cfg.DatabaseDriver == DriverMemory))); err != nil {
		errs = append(errs, fmt.Errorf("SEED_DEMO: %w", err))
	}

	switch cfg.DatabaseDriver {
	case DriverMemory:
	case DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultSQLiteDSN
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", cfg.DatabaseDriver))
	}
	if cfg.SweepSchedule != "" && len(cfg.SweepLandlords) == 0 {
		errs = append(errs, errors.New("SWEEP_LANDLORDS is required when SWEEP_SCHEDULE is set"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds a JSON logger at the configured level, falling back to
// info for an unknown level.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// ReasoningEnabled reports whether an API key is configured.
func (c *Config) ReasoningEnabled() bool { return c.OpenAIAPIKey != "" }

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
