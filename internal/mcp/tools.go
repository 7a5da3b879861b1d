// ABOUTME: MCP tool definitions and registration for the keel server
// ABOUTME: Defines JSON schemas for the decision, inbox, conflict, and recall tools
package mcp

import (
	"github.com/keelstore/keel/internal/conflict"
	"github.com/keelstore/keel/internal/recall"
	"github.com/keelstore/keel/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, st *store.Store, detector *conflict.Detector, engine *recall.Engine) *Handlers {
	handlers := &Handlers{
		store:    st,
		detector: detector,
		engine:   engine,
	}

	// 1. add_decision - Record a decision in the project truth store
	server.AddTool(mcp.Tool{
		Name:        "add_decision",
		Description: "Record a decision in the project truth store. Appends to the append-only decision ledger.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The decision statement, one line",
				},
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Dot-namespaced topic, e.g. bathroom.floor",
				},
				"surface": map[string]interface{}{
					"type":        "string",
					"description": "Sub-aspect within domain; empty matches the whole domain",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "candidate or final (default final)",
				},
				"evidence": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Free-form evidence references",
				},
				"confidence": map[string]interface{}{
					"type":        "string",
					"description": "low, medium, or high",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.AddDecision)

	// 2. supersede_decision - Replace an existing decision with a new one
	server.AddTool(mcp.Tool{
		Name:        "supersede_decision",
		Description: "Replace an existing decision with a new one. The old decision stays in history, marked superseded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"old_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the decision being replaced",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The replacement decision statement",
				},
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Dot-namespaced topic of the new decision",
				},
				"surface": map[string]interface{}{
					"type":        "string",
					"description": "Sub-aspect within domain",
				},
				"evidence": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Free-form evidence references",
				},
				"confidence": map[string]interface{}{
					"type":        "string",
					"description": "low, medium, or high",
				},
			},
			Required: []string{"old_id", "text"},
		},
	}, handlers.SupersedeDecision)

	// 3. list_decisions - List decisions, current view or full history
	server.AddTool(mcp.Tool{
		Name:        "list_decisions",
		Description: "List decisions from the ledger: the latest row per id by default, or full append-order history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Filter to a domain (matches sub-domains too)",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Filter by status: candidate, final, superseded",
				},
				"include_history": map[string]interface{}{
					"type":        "boolean",
					"description": "Return full append order instead of latest-per-id",
				},
				"current_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Return only the derived current view: non-superseded, non-replaced decisions",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum rows to return (default 50)",
					"default":     50,
				},
			},
		},
	}, handlers.ListDecisions)

	// 4. raise_question - Add an open item to the project inbox
	server.AddTool(mcp.Tool{
		Name:        "raise_question",
		Description: "Add an open item (clarification, pending decision, missing requirements) to the project inbox for a human to answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The question or item text",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "clarification, pending_decision, or missing_requirements (default clarification)",
				},
				"refs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "References like decision:<id>",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.RaiseQuestion)

	// 5. resolve_inbox_item - Mark an open inbox item resolved
	server.AddTool(mcp.Tool{
		Name:        "resolve_inbox_item",
		Description: "Mark an open inbox item resolved. Fails if the item has no open row.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Inbox item id",
				},
				"note": map[string]interface{}{
					"type":        "string",
					"description": "Optional resolution note",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.ResolveInboxItem)

	// 6. detect_conflicts - Find disagreeing current decisions
	server.AddTool(mcp.Tool{
		Name:        "detect_conflicts",
		Description: "Detect conflicting current decisions, grouped by domain and surface. Optionally file each conflict into the inbox (idempotent).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sync_inbox": map[string]interface{}{
					"type":        "boolean",
					"description": "Also append an open inbox item per new conflict",
				},
			},
		},
	}, handlers.DetectConflicts)

	// 7. resolve_conflict - Resolve a conflict by naming the winner
	server.AddTool(mcp.Tool{
		Name:        "resolve_conflict",
		Description: "Resolve an open conflict inbox item by keeping one decision and superseding the rest.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conflict_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the open conflict inbox item",
				},
				"winner_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the decision to keep",
				},
			},
			Required: []string{"conflict_id", "winner_id"},
		},
	}, handlers.ResolveConflict)

	// 8. build_snippets - Bounded retrieval over the canonical sources
	server.AddTool(mcp.Tool{
		Name:        "build_snippets",
		Description: "Build bounded, labeled text snippets from the canonical sources allowed for an intent. Deterministic for identical inputs and disk state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "One of: recall, plan, execute, status",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Free text the snippets should be relevant to",
				},
				"entities": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Extra entity terms to weight",
				},
			},
			Required: []string{"intent", "text"},
		},
	}, handlers.BuildSnippets)

	return handlers
}
