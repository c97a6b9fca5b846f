package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds process configuration read from the environment.
type Config struct {
	// HTTP server
	Port string

	// Text generation
	GeminiModel string

	// Transaction source; empty project disables BigQuery and the
	// analysis endpoints fall back to request-supplied transactions.
	BigQueryProject string
	BigQueryDataset string

	// Identity the single-tenant deployment serves.
	UserID string

	// Background titling queue
	TitleQueueSize int
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		GeminiModel: getEnv("GEMINI_MODEL", ""),

		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "finance"),

		UserID: getEnv("ASSISTANT_USER_ID", "default"),

		TitleQueueSize: getEnvInt("TITLE_QUEUE_SIZE", 100),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.BigQueryProject != "" && c.BigQueryDataset == "" {
		errors = append(errors, "BigQuery dataset cannot be empty when a project is configured")
	}

	if c.UserID == "" {
		errors = append(errors, "user id cannot be empty")
	}

	if c.TitleQueueSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid title queue size %d: must be at least 1", c.TitleQueueSize))
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
