// ABOUTME: Tests for the append-only decision ledger
// ABOUTME: Verifies supersession, the current view, candidates, and read normalization
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/keelstore/keel/internal/models"
)

func TestAddDecisionConcurrentIDsUnique(t *testing.T) {
	st := newTestStore(t)

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := st.AddDecision("bathroom.floor", "tile", models.DecisionFinal, fmt.Sprintf("option %d", i), "", nil, "")
			if err != nil {
				t.Errorf("AddDecision() error = %v", err)
				return
			}
			ids[i] = rec.ID
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if seen[id] {
			t.Errorf("id %s allocated twice", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Errorf("unique ids = %d, want %d", len(seen), workers)
	}

	rows, err := st.ListDecisions("", "", true, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != workers {
		t.Errorf("ledger rows = %d, want %d", len(rows), workers)
	}
}

func TestAddDecision(t *testing.T) {
	st := newTestStore(t)

	rec, err := st.AddDecision("Bathroom.Floor", "Tile", models.DecisionFinal, "  White hex  tile ", "", []string{"uploads/quote.pdf"}, models.ConfidenceHigh)
	if err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}
	if !strings.HasPrefix(rec.ID, "dec_") {
		t.Errorf("ID = %q, want dec_ prefix", rec.ID)
	}
	if rec.Domain != "bathroom.floor" {
		t.Errorf("Domain = %q, want lowercased %q", rec.Domain, "bathroom.floor")
	}
	if rec.Surface != "tile" {
		t.Errorf("Surface = %q, want %q", rec.Surface, "tile")
	}
	if rec.Text != "White hex tile" {
		t.Errorf("Text = %q, want collapsed %q", rec.Text, "White hex tile")
	}
	if rec.Status != models.DecisionFinal {
		t.Errorf("Status = %q, want final", rec.Status)
	}
}

func TestAddDecisionValidation(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.AddDecision("d", "", "bogus", "text", "", nil, ""); err == nil {
		t.Error("AddDecision() with unknown status should fail")
	}
	if _, err := st.AddDecision("d", "", models.DecisionFinal, "text", "", nil, "certain"); err == nil {
		t.Error("AddDecision() with unknown confidence should fail")
	}
	if _, err := st.AddDecision("d", "", models.DecisionFinal, "  \n ", "", nil, ""); err == nil {
		t.Error("AddDecision() with blank text should fail")
	}
}

func TestSupersedeDecision(t *testing.T) {
	st := newTestStore(t)

	old, err := st.AddDecision("bathroom.floor", "tile", models.DecisionFinal, "white hex tile", "", nil, "")
	if err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}

	newRec, marker, err := st.SupersedeDecision(old.ID, "bathroom.floor", "tile", "grey porcelain tile", nil, models.ConfidenceMedium)
	if err != nil {
		t.Fatalf("SupersedeDecision() error = %v", err)
	}
	if newRec.Supersedes != old.ID {
		t.Errorf("new Supersedes = %q, want %q", newRec.Supersedes, old.ID)
	}
	if marker.ID != old.ID {
		t.Errorf("marker ID = %q, want old id %q", marker.ID, old.ID)
	}
	if marker.Status != models.DecisionSuperseded {
		t.Errorf("marker Status = %q, want superseded", marker.Status)
	}

	// Old rows are still in history, untouched.
	history, err := st.ListDecisions("", "", true, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history rows = %d, want 3 (original, replacement, marker)", len(history))
	}
	if history[0].ID != old.ID || history[0].Status != models.DecisionFinal {
		t.Errorf("first history row changed: %+v", history[0])
	}

	// Current view keeps only the replacement.
	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 1 || current[0].ID != newRec.ID {
		t.Errorf("current = %+v, want only %s", current, newRec.ID)
	}

	// The supersession is recorded as a provenance link.
	links, err := st.ListLinks(models.LinkDecisionToDecision, 0)
	if err != nil {
		t.Fatalf("ListLinks() error = %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1", len(links))
	}
	if links[0].From != "decision:"+newRec.ID || links[0].To != "decision:"+old.ID {
		t.Errorf("link = %s -> %s, want %s -> %s", links[0].From, links[0].To, "decision:"+newRec.ID, "decision:"+old.ID)
	}
}

func TestSupersedeDecisionMissingOld(t *testing.T) {
	st := newTestStore(t)
	_, _, err := st.SupersedeDecision("dec_2020_01_01_001", "d", "", "new text", nil, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SupersedeDecision() error = %v, want ErrNotFound", err)
	}
}

func TestCurrentDecisionsExcludesSupersedesReference(t *testing.T) {
	st := newTestStore(t)

	old, err := st.AddDecision("d", "", models.DecisionFinal, "old choice", "", nil, "")
	if err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}
	// Replacement row written, but the superseded marker never landed
	// (crash between the two appends). The reference alone must still
	// exclude the old decision from the current view.
	newRec, err := st.AddDecision("d", "", models.DecisionFinal, "new choice", old.ID, nil, "")
	if err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}

	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 1 || current[0].ID != newRec.ID {
		t.Errorf("current = %+v, want only %s", current, newRec.ID)
	}
}

func TestLastLineWins(t *testing.T) {
	st := newTestStore(t)

	rec, err := st.AddDecision("d", "", models.DecisionFinal, "choice", "", nil, "")
	if err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}

	// Append a later row reusing the id with a timestamp that sorts
	// EARLIER. File order must win, not the timestamp.
	stale := models.DecisionRecord{
		ID:        rec.ID,
		CreatedAt: "2001-01-01T00:00:00",
		Status:    models.DecisionSuperseded,
		Text:      rec.Text,
	}
	if err := st.appendDecisionRow(st.path(DecisionsFile), stale); err != nil {
		t.Fatalf("appendDecisionRow() error = %v", err)
	}

	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 0 {
		t.Errorf("current = %+v, want empty (last line marks it superseded)", current)
	}
}

func TestListDecisionsFilters(t *testing.T) {
	st := newTestStore(t)

	mustAdd := func(domain, text string) {
		t.Helper()
		if _, err := st.AddDecision(domain, "", models.DecisionFinal, text, "", nil, ""); err != nil {
			t.Fatalf("AddDecision() error = %v", err)
		}
	}
	mustAdd("bathroom.floor", "tile pick")
	mustAdd("bathroom.wall", "wall paint")
	mustAdd("kitchen", "counter pick")

	rows, err := st.ListDecisions("bathroom", "", false, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("bathroom rows = %d, want 2 (dot-prefix match)", len(rows))
	}

	rows, err = st.ListDecisions("bathroom.floor", "", false, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Text != "tile pick" {
		t.Errorf("bathroom.floor rows = %+v, want only tile pick", rows)
	}

	// A filter must not match an unrelated prefix.
	rows, err = st.ListDecisions("bath", "", false, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("bath rows = %d, want 0", len(rows))
	}

	rows, err = st.ListDecisions("", "", false, 2)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("limited rows = %d, want 2", len(rows))
	}
}

func TestCandidatePromotion(t *testing.T) {
	st := newTestStore(t)

	cand, err := st.AddCandidate("bathroom.vanity", "", "float the vanity", nil, models.ConfidenceLow)
	if err != nil {
		t.Fatalf("AddCandidate() error = %v", err)
	}
	if !strings.HasPrefix(cand.ID, "cand_") {
		t.Errorf("candidate ID = %q, want cand_ prefix", cand.ID)
	}
	if cand.Status != models.DecisionCandidate {
		t.Errorf("candidate Status = %q, want candidate", cand.Status)
	}

	promoted, err := st.PromoteCandidate(cand.ID)
	if err != nil {
		t.Fatalf("PromoteCandidate() error = %v", err)
	}
	if promoted.Status != models.DecisionFinal {
		t.Errorf("promoted Status = %q, want final", promoted.Status)
	}
	if promoted.Text != "float the vanity" {
		t.Errorf("promoted Text = %q", promoted.Text)
	}

	// Candidate list no longer shows it.
	cands, err := st.ListCandidates()
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("candidates after promote = %+v, want empty", cands)
	}

	// Promoting twice fails without writing.
	if _, err := st.PromoteCandidate(cand.ID); !errors.Is(err, ErrNotOpen) {
		t.Errorf("second PromoteCandidate() error = %v, want ErrNotOpen", err)
	}

	// The promoted decision appears in the current view.
	current, err := st.CurrentDecisions()
	if err != nil {
		t.Fatalf("CurrentDecisions() error = %v", err)
	}
	if len(current) != 1 || current[0].ID != promoted.ID {
		t.Errorf("current = %+v, want only %s", current, promoted.ID)
	}
}

func TestPromoteCandidateNotFound(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.PromoteCandidate("cand_2020_01_01_001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("PromoteCandidate() error = %v, want ErrNotFound", err)
	}
}

func TestFindCurrentDecisionByText(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.AddDecision("d", "", models.DecisionFinal, "keep the tub", "", nil, ""); err != nil {
		t.Fatalf("AddDecision() error = %v", err)
	}
	rec, err := st.FindCurrentDecisionByText("  keep   the tub ")
	if err != nil {
		t.Fatalf("FindCurrentDecisionByText() error = %v", err)
	}
	if rec.Text != "keep the tub" {
		t.Errorf("Text = %q", rec.Text)
	}

	if _, err := st.FindCurrentDecisionByText("never recorded"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindCurrentDecisionByText() error = %v, want ErrNotFound", err)
	}
}

func TestReadNormalizationOfLegacyRows(t *testing.T) {
	st := newTestStore(t)

	// Rows written by an earlier tool: missing status, missing id,
	// unknown confidence, plus one corrupt line.
	raw := strings.Join([]string{
		`{"created_at":"2026-08-01T10:00:00","text":"no status row"}`,
		`{"id":"","created_at":"2026-08-02T10:00:00","status":"final","text":"no id row"}`,
		`{"id":"dec_x","created_at":"2026-08-03T10:00:00","status":"final","text":"odd confidence","confidence":"certain"}`,
		`{corrupt`,
	}, "\n") + "\n"
	if err := os.WriteFile(st.path(DecisionsFile), []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rows, err := st.ListDecisions("", "", true, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (corrupt line skipped)", len(rows))
	}
	if rows[0].Status != models.DecisionFinal {
		t.Errorf("missing status = %q, want final", rows[0].Status)
	}
	if rows[1].ID == "" || !strings.HasPrefix(rows[1].ID, "dec_h") {
		t.Errorf("missing id derived = %q, want dec_h prefix", rows[1].ID)
	}
	if rows[2].Confidence != "" {
		t.Errorf("unknown confidence = %q, want coerced to empty", rows[2].Confidence)
	}

	// Derived ids are stable across reads.
	again, err := st.ListDecisions("", "", true, 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if again[1].ID != rows[1].ID {
		t.Errorf("derived id changed between reads: %q vs %q", rows[1].ID, again[1].ID)
	}
}
