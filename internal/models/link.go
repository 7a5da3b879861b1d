// ABOUTME: LinkEvent is an append-only provenance edge between stored things
// ABOUTME: Ids are content hashes so identical links are idempotent under retry
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// LinkType names the kind of provenance edge.
type LinkType string

const (
	LinkUploadToDecision      LinkType = "upload_to_decision"
	LinkDeliverableToDecision LinkType = "deliverable_to_decision"
	LinkUploadToDeliverable   LinkType = "upload_to_deliverable"
	LinkDecisionToDecision    LinkType = "decision_to_decision"
)

// LinkEvent is one line in links.jsonl.
type LinkEvent struct {
	ID         string     `json:"id"`
	CreatedAt  string     `json:"created_at"`
	Type       LinkType   `json:"type"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Reason     string     `json:"reason,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// ValidLinkType reports whether t is a known edge type.
func ValidLinkType(t LinkType) bool {
	switch t {
	case LinkUploadToDecision, LinkDeliverableToDecision, LinkUploadToDeliverable, LinkDecisionToDecision:
		return true
	}
	return false
}

// LinkID derives the content-hash id for an edge. Two calls with the same
// (type, from, to, reason) always produce the same id.
func LinkID(t LinkType, from, to, reason string) string {
	sum := sha256.Sum256([]byte(string(t) + "\x00" + from + "\x00" + to + "\x00" + reason))
	return fmt.Sprintf("link_%s", hex.EncodeToString(sum[:])[:16])
}
