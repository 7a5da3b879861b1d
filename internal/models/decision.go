// ABOUTME: DecisionRecord is one appended row in the project decision ledger
// ABOUTME: Rows are immutable; supersession appends new rows, never edits
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DecisionStatus is the lifecycle state of a decision row.
type DecisionStatus string

const (
	DecisionCandidate  DecisionStatus = "candidate"
	DecisionFinal      DecisionStatus = "final"
	DecisionSuperseded DecisionStatus = "superseded"
)

// Confidence grades how sure the author of a record was.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DecisionRecord is one line in decisions.jsonl (or decision_candidates.jsonl).
type DecisionRecord struct {
	ID         string         `json:"id"`
	CreatedAt  string         `json:"created_at"`
	Domain     string         `json:"domain,omitempty"`
	Surface    string         `json:"surface,omitempty"`
	Status     DecisionStatus `json:"status"`
	Text       string         `json:"text"`
	Supersedes string         `json:"supersedes,omitempty"`
	Evidence   []string       `json:"evidence,omitempty"`
	Confidence Confidence     `json:"confidence,omitempty"`
}

// ValidDecisionStatus reports whether s is a known lifecycle state.
func ValidDecisionStatus(s DecisionStatus) bool {
	switch s {
	case DecisionCandidate, DecisionFinal, DecisionSuperseded:
		return true
	}
	return false
}

// ValidConfidence reports whether c is a known grade. Empty is allowed.
func ValidConfidence(c Confidence) bool {
	switch c {
	case "", ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// DerivedDecisionID builds a stable content-derived id for legacy rows that
// were written without one. The same row content always hashes to the same
// id, so repeated reads of the same file agree.
func DerivedDecisionID(createdAt, domain, surface, text string) string {
	sum := sha256.Sum256([]byte(createdAt + "\x00" + domain + "\x00" + surface + "\x00" + text))
	return fmt.Sprintf("dec_h%s", hex.EncodeToString(sum[:])[:12])
}
