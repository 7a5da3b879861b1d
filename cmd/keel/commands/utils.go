// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Store setup and small formatting helpers used across subcommands
package commands

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/keelstore/keel/internal/config"
	"github.com/keelstore/keel/internal/store"
)

// openStore loads configuration and opens the project's truth store.
func openStore() (*store.Store, *config.Config, error) {
	// Load .env for local overrides
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if project != "" {
		cfg.Project = project
	}
	store.EnableReadCache(cfg.ReadCache)

	st, err := store.Open(cfg.DataHome, cfg.Project, cfg.MaxCommitBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing store: %w", err)
	}
	return st, cfg, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// day extracts the date part of a stored timestamp for display
func day(createdAt string) string {
	if len(createdAt) >= 10 {
		return createdAt[:10]
	}
	return createdAt
}
