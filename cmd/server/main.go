// ABOUTME: Main entry point for the keel MCP server with stdio transport
// ABOUTME: Initializes the store, conflict detector, recall engine, and tools
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/keelstore/keel/internal/config"
	"github.com/keelstore/keel/internal/conflict"
	"github.com/keelstore/keel/internal/mcp"
	"github.com/keelstore/keel/internal/recall"
	"github.com/keelstore/keel/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	store.EnableReadCache(cfg.ReadCache)

	st, err := store.Open(cfg.DataHome, cfg.Project, cfg.MaxCommitBytes)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	policy := recall.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = recall.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			log.Fatalf("Failed to load recall policy: %v", err)
		}
	}
	policy.Budget = cfg.SnippetBudget
	policy.LogTail = cfg.LogTail

	detector := conflict.NewDetector(st)
	engine := recall.NewEngine(st, policy)

	server := mcpserver.NewMCPServer(
		"Keel Truth Store",
		"0.1.0",
	)

	mcp.RegisterTools(server, st, detector, engine)

	log.Printf("Keel MCP server starting on stdio (project %s)...", st.Project())
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
