// ABOUTME: Tests for LinkEvent types and content-hash ids
// ABOUTME: Verifies type validation and id idempotence
package models

import (
	"strings"
	"testing"
)

func TestValidLinkType(t *testing.T) {
	for _, valid := range []LinkType{LinkUploadToDecision, LinkDeliverableToDecision, LinkUploadToDeliverable, LinkDecisionToDecision} {
		if !ValidLinkType(valid) {
			t.Errorf("ValidLinkType(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []LinkType{"", "related_to", "upload_to_upload"} {
		if ValidLinkType(invalid) {
			t.Errorf("ValidLinkType(%q) = true, want false", invalid)
		}
	}
}

func TestLinkID(t *testing.T) {
	a := LinkID(LinkUploadToDecision, "uploads/quote.pdf", "decision:dec_1", "backs it")
	b := LinkID(LinkUploadToDecision, "uploads/quote.pdf", "decision:dec_1", "backs it")
	if a != b {
		t.Errorf("same link hashed to different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "link_") {
		t.Errorf("id = %q, want link_ prefix", a)
	}

	if a == LinkID(LinkUploadToDecision, "uploads/quote.pdf", "decision:dec_1", "other reason") {
		t.Error("different reason hashed to the same id")
	}
	if a == LinkID(LinkDeliverableToDecision, "uploads/quote.pdf", "decision:dec_1", "backs it") {
		t.Error("different type hashed to the same id")
	}
}
