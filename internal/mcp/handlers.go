// ABOUTME: MCP tool handler implementations for the keel server
// ABOUTME: Rejected writes come back as tool errors; transient I/O is retried
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/keelstore/keel/internal/conflict"
	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/recall"
	"github.com/keelstore/keel/internal/store"
	"github.com/keelstore/keel/internal/util"
	"github.com/mark3labs/mcp-go/mcp"
)

const commitAttempts = 3

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store    *store.Store
	detector *conflict.Detector
	engine   *recall.Engine
}

// withRetry re-runs fn on transient storage failures. Rejections and
// not-found outcomes are final and never retried.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(50*time.Millisecond, attempt))
		}
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrRejected) || errors.Is(err, store.ErrNotFound) ||
			errors.Is(err, store.ErrNotOpen) || errors.Is(err, store.ErrIdentityArea) {
			return err
		}
	}
	return err
}

// AddDecision handles the add_decision tool
func (h *Handlers) AddDecision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	domain := request.GetString("domain", "")
	surface := request.GetString("surface", "")
	status := models.DecisionStatus(request.GetString("status", "final"))
	evidence := request.GetStringSlice("evidence", nil)
	confidence := models.Confidence(request.GetString("confidence", ""))

	var rec models.DecisionRecord
	commit := func() error {
		var err error
		if status == models.DecisionCandidate {
			rec, err = h.store.AddCandidate(domain, surface, text, evidence, confidence)
		} else {
			rec, err = h.store.AddDecision(domain, surface, status, text, "", evidence, confidence)
		}
		return err
	}
	if err := withRetry(commit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record decision: %v", err)), nil
	}
	return jsonResult(rec)
}

// SupersedeDecision handles the supersede_decision tool
func (h *Handlers) SupersedeDecision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldID, err := request.RequireString("old_id")
	if err != nil {
		return mcp.NewToolResultError("old_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	domain := request.GetString("domain", "")
	surface := request.GetString("surface", "")
	evidence := request.GetStringSlice("evidence", nil)
	confidence := models.Confidence(request.GetString("confidence", ""))

	var newRec, marker models.DecisionRecord
	commit := func() error {
		var err error
		newRec, marker, err = h.store.SupersedeDecision(oldID, domain, surface, text, evidence, confidence)
		return err
	}
	if err := withRetry(commit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to supersede %s: %v", oldID, err)), nil
	}
	return jsonResult(map[string]any{"decision": newRec, "superseded_marker": marker})
}

// ListDecisions handles the list_decisions tool
func (h *Handlers) ListDecisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain := request.GetString("domain", "")
	status := models.DecisionStatus(request.GetString("status", ""))
	includeHistory := request.GetBool("include_history", false)
	limit := request.GetInt("limit", 50)

	if request.GetBool("current_only", false) {
		rows, err := h.store.CurrentDecisions()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to derive current decisions: %v", err)), nil
		}
		return jsonResult(map[string]any{"decisions": rows, "count": len(rows)})
	}

	rows, err := h.store.ListDecisions(domain, status, includeHistory, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list decisions: %v", err)), nil
	}
	return jsonResult(map[string]any{"decisions": rows, "count": len(rows)})
}

// RaiseQuestion handles the raise_question tool
func (h *Handlers) RaiseQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	itemType := models.InboxItemType(request.GetString("type", string(models.InboxClarification)))
	refs := request.GetStringSlice("refs", nil)

	var item models.InboxItem
	commit := func() error {
		var err error
		item, err = h.store.AppendInboxItem(itemType, text, refs)
		return err
	}
	if err := withRetry(commit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to append inbox item: %v", err)), nil
	}
	return jsonResult(item)
}

// ResolveInboxItem handles the resolve_inbox_item tool
func (h *Handlers) ResolveInboxItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}
	note := request.GetString("note", "")

	if err := withRetry(func() error { return h.store.ResolveInboxItem(id, note, nil) }); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve %s: %v", id, err)), nil
	}
	return jsonResult(map[string]any{"resolved": id})
}

// DetectConflicts handles the detect_conflicts tool
func (h *Handlers) DetectConflicts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conflicts, err := h.detector.DetectConflicts()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conflict detection failed: %v", err)), nil
	}

	appended := 0
	if request.GetBool("sync_inbox", false) {
		if err := withRetry(func() error {
			var err error
			appended, err = h.detector.EnsureConflictsInInbox()
			return err
		}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to file conflicts: %v", err)), nil
		}
	}
	return jsonResult(map[string]any{"conflicts": conflicts, "count": len(conflicts), "filed": appended})
}

// ResolveConflict handles the resolve_conflict tool
func (h *Handlers) ResolveConflict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conflictID, err := request.RequireString("conflict_id")
	if err != nil {
		return mcp.NewToolResultError("conflict_id argument is required and must be a string"), nil
	}
	winnerID, err := request.RequireString("winner_id")
	if err != nil {
		return mcp.NewToolResultError("winner_id argument is required and must be a string"), nil
	}

	var ok bool
	if err := withRetry(func() error {
		var err error
		ok, err = h.detector.ResolveConflictByWinner(conflictID, winnerID)
		return err
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conflict resolution failed: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("conflict %s not resolved: winner %s is not a member or the item is not open", conflictID, winnerID)), nil
	}
	return jsonResult(map[string]any{"resolved": conflictID, "winner": winnerID})
}

// BuildSnippets handles the build_snippets tool
func (h *Handlers) BuildSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := request.RequireString("intent")
	if err != nil {
		return mcp.NewToolResultError("intent argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	entities := request.GetStringSlice("entities", nil)

	blocks, err := h.engine.BuildSnippets(intent, entities, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snippet build failed: %v", err)), nil
	}
	return mcp.NewToolResultText(recall.Render(blocks)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
