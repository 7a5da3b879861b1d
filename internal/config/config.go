// ABOUTME: Centralized configuration for the keel truth store
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/keelstore/keel/internal/store"
)

// Config holds all configuration for the truth store.
type Config struct {
	// Storage settings
	DataHome string
	Project  string

	// Gateway settings
	MaxCommitBytes int

	// Retrieval settings
	SnippetBudget int
	LogTail       int
	PolicyFile    string

	// Read-path settings
	ReadCache bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DataHome:       store.DefaultDataHome(),
		Project:        getEnv("KEEL_PROJECT", "default"),
		MaxCommitBytes: getEnvInt("KEEL_MAX_COMMIT_BYTES", store.DefaultMaxCommitBytes),
		SnippetBudget:  getEnvInt("KEEL_SNIPPET_BUDGET", 6000),
		LogTail:        getEnvInt("KEEL_LOG_TAIL", 200),
		PolicyFile:     os.Getenv("KEEL_POLICY_FILE"),
		ReadCache:      getEnvBool("KEEL_READ_CACHE", false),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("KEEL_PROJECT must not be empty")
	}
	if c.MaxCommitBytes <= 0 {
		return fmt.Errorf("KEEL_MAX_COMMIT_BYTES must be positive, got %d", c.MaxCommitBytes)
	}
	if c.SnippetBudget <= 0 {
		return fmt.Errorf("KEEL_SNIPPET_BUDGET must be positive, got %d", c.SnippetBudget)
	}
	if c.LogTail <= 0 {
		return fmt.Errorf("KEEL_LOG_TAIL must be positive, got %d", c.LogTail)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
