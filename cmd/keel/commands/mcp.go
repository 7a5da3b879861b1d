// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use the truth store via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
	"github.com/keelstore/keel/internal/conflict"
	"github.com/keelstore/keel/internal/mcp"
	"github.com/keelstore/keel/internal/recall"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs Keel as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to record decisions, resolve conflicts,
and pull grounded context snippets over stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  keel mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "keel": {
  #       "command": "keel",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	st, cfg, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	policy := recall.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = recall.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("loading recall policy: %w", err)
		}
	}
	policy.Budget = cfg.SnippetBudget
	policy.LogTail = cfg.LogTail

	detector := conflict.NewDetector(st)
	engine := recall.NewEngine(st, policy)

	server := mcpserver.NewMCPServer(
		"Keel Truth Store",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, st, detector, engine)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Printf("Keel MCP server starting on stdio (project %s)...", st.Project())
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, exiting")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
