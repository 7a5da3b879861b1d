// ABOUTME: InboxItem is one appended row in the project's open-question queue
// ABOUTME: Resolving an item appends a new row with the same id, status resolved
package models

// InboxItemType classifies what kind of attention an item needs.
type InboxItemType string

const (
	InboxClarification       InboxItemType = "clarification"
	InboxPendingDecision     InboxItemType = "pending_decision"
	InboxConflict            InboxItemType = "conflict"
	InboxMissingRequirements InboxItemType = "missing_requirements"
)

// InboxStatus is the lifecycle state of an inbox item.
type InboxStatus string

const (
	InboxOpen     InboxStatus = "open"
	InboxResolved InboxStatus = "resolved"
)

// InboxItem is one line in inbox.jsonl. The conflict-only fields
// (Domain, Surface, DecisionIDs, Texts) are empty for other types.
type InboxItem struct {
	ID          string        `json:"id"`
	CreatedAt   string        `json:"created_at"`
	Type        InboxItemType `json:"type"`
	Status      InboxStatus   `json:"status"`
	Text        string        `json:"text"`
	Refs        []string      `json:"refs,omitempty"`
	Domain      string        `json:"domain,omitempty"`
	Surface     string        `json:"surface,omitempty"`
	DecisionIDs []string      `json:"decision_ids,omitempty"`
	Texts       []string      `json:"texts,omitempty"`
}

// ValidInboxType reports whether t is a known item type.
func ValidInboxType(t InboxItemType) bool {
	switch t {
	case InboxClarification, InboxPendingDecision, InboxConflict, InboxMissingRequirements:
		return true
	}
	return false
}
