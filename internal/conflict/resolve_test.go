// ABOUTME: Tests for winner-based conflict resolution
// ABOUTME: Verifies loser retirement, provenance links, and the no-write guardrails
package conflict

import (
	"strings"
	"testing"

	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/store"
)

func setupConflict(t *testing.T) (*Detector, *store.Store, models.InboxItem, models.DecisionRecord, models.DecisionRecord) {
	t.Helper()
	d, st := newTestDetector(t)

	winner := addFinal(t, st, "bathroom.floor", "tile", "white hex tile")
	loser := addFinal(t, st, "bathroom.floor", "tile", "grey porcelain tile")

	if _, err := d.EnsureConflictsInInbox(); err != nil {
		t.Fatalf("EnsureConflictsInInbox() error = %v", err)
	}
	open, err := st.ListOpenInbox(0)
	if err != nil {
		t.Fatalf("ListOpenInbox() error = %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open items = %d, want 1", len(open))
	}
	return d, st, open[0], winner, loser
}

func TestResolveConflictByWinner(t *testing.T) {
	d, st, item, winner, loser := setupConflict(t)

	ok, err := d.ResolveConflictByWinner(item.ID, winner.ID)
	if err != nil {
		t.Fatalf("ResolveConflictByWinner() error = %v", err)
	}
	if !ok {
		t.Fatal("ResolveConflictByWinner() = false, want true")
	}

	// Only the winner survives in the current view.
	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 1 || current[0].ID != winner.ID {
		t.Errorf("current = %+v, want only %s", current, winner.ID)
	}

	// The loser's history is intact, retired by an appended marker.
	retired, err := st.FindDecision(loser.ID)
	if err != nil {
		t.Fatalf("FindDecision() error = %v", err)
	}
	if retired.Status != models.DecisionSuperseded {
		t.Errorf("loser status = %q, want superseded", retired.Status)
	}

	// A provenance link records the outcome.
	links, err := st.ListLinks(models.LinkDecisionToDecision, 0)
	if err != nil {
		t.Fatalf("ListLinks() error = %v", err)
	}
	found := false
	for _, l := range links {
		if l.From == "decision:"+winner.ID && l.To == "decision:"+loser.ID {
			found = true
			if l.Reason != "conflict_resolution_supersedes" {
				t.Errorf("link reason = %q", l.Reason)
			}
		}
	}
	if !found {
		t.Errorf("no winner->loser link in %+v", links)
	}

	// The inbox item is closed with the winner noted.
	items, err := st.ListInbox(false)
	if err != nil {
		t.Fatalf("ListInbox() error = %v", err)
	}
	var resolved *models.InboxItem
	for i := range items {
		if items[i].ID == item.ID {
			resolved = &items[i]
		}
	}
	if resolved == nil || resolved.Status != models.InboxResolved {
		t.Fatalf("conflict item not resolved: %+v", resolved)
	}
	if !strings.Contains(resolved.Text, "kept "+winner.ID) {
		t.Errorf("resolved text = %q, want the kept winner noted", resolved.Text)
	}

	// Detection finds nothing afterwards.
	conflicts, err := d.DetectConflicts()
	if err != nil {
		t.Fatalf("DetectConflicts() error = %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts after resolution = %+v, want none", conflicts)
	}
}

func TestResolveConflictByWinnerNonMember(t *testing.T) {
	d, st, item, _, _ := setupConflict(t)

	outsider := addFinal(t, st, "kitchen", "", "new counters")

	ok, err := d.ResolveConflictByWinner(item.ID, outsider.ID)
	if err != nil {
		t.Fatalf("ResolveConflictByWinner() error = %v", err)
	}
	if ok {
		t.Fatal("ResolveConflictByWinner() = true for a non-member winner, want false")
	}

	// Nothing changed: the item is still open and both decisions stand.
	open, err := st.ListOpenInbox(0)
	if err != nil {
		t.Fatalf("ListOpenInbox() error = %v", err)
	}
	if len(open) != 1 || open[0].ID != item.ID {
		t.Errorf("open = %+v, want the untouched conflict item", open)
	}
	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 3 {
		t.Errorf("current = %d decisions, want 3 untouched", len(current))
	}
}

func TestResolveConflictByWinnerMissingOrWrongItem(t *testing.T) {
	d, st, item, winner, _ := setupConflict(t)

	ok, err := d.ResolveConflictByWinner("inbox_2020_01_01_001", winner.ID)
	if err != nil || ok {
		t.Errorf("missing item: ok=%v err=%v, want false nil", ok, err)
	}

	// A non-conflict item is refused even with a plausible winner.
	other, err := st.AppendInboxItem(models.InboxClarification, "unrelated question", nil)
	if err != nil {
		t.Fatalf("AppendInboxItem() error = %v", err)
	}
	ok, err = d.ResolveConflictByWinner(other.ID, winner.ID)
	if err != nil || ok {
		t.Errorf("non-conflict item: ok=%v err=%v, want false nil", ok, err)
	}

	// An already-resolved conflict is refused.
	if ok, err := d.ResolveConflictByWinner(item.ID, winner.ID); err != nil || !ok {
		t.Fatalf("first resolve: ok=%v err=%v", ok, err)
	}
	ok, err = d.ResolveConflictByWinner(item.ID, winner.ID)
	if err != nil || ok {
		t.Errorf("second resolve: ok=%v err=%v, want false nil", ok, err)
	}
}
