// ABOUTME: Append-only decision ledger plus the derived current-decision view
// ABOUTME: File order is authoritative; supersession appends rows, never edits
package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keelstore/keel/internal/models"
)

// AddDecision appends a new decision row with a freshly allocated id.
func (s *Store) AddDecision(domain, surface string, status models.DecisionStatus, text string, supersedes string, evidence []string, confidence models.Confidence) (models.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendDecision(s.path(DecisionsFile), "dec", domain, surface, status, text, supersedes, evidence, confidence)
}

// AddCandidate appends a pending decision to the candidates log.
func (s *Store) AddCandidate(domain, surface, text string, evidence []string, confidence models.Confidence) (models.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendDecision(s.path(CandidatesFile), "cand", domain, surface, models.DecisionCandidate, text, "", evidence, confidence)
}

func (s *Store) appendDecision(path, prefix, domain, surface string, status models.DecisionStatus, text, supersedes string, evidence []string, confidence models.Confidence) (models.DecisionRecord, error) {
	if status == "" {
		status = models.DecisionFinal
	}
	if !models.ValidDecisionStatus(status) {
		return models.DecisionRecord{}, fmt.Errorf("unknown decision status %q", status)
	}
	if !models.ValidConfidence(confidence) {
		return models.DecisionRecord{}, fmt.Errorf("unknown confidence %q", confidence)
	}
	text = Line(text)
	if text == "" {
		return models.DecisionRecord{}, fmt.Errorf("decision text is required")
	}

	rows, err := s.loadDecisionRows(path)
	if err != nil {
		return models.DecisionRecord{}, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	rec := models.DecisionRecord{
		ID:         allocateID(prefix, ids),
		CreatedAt:  nowString(),
		Domain:     Line(strings.ToLower(domain)),
		Surface:    Line(strings.ToLower(surface)),
		Status:     status,
		Text:       text,
		Supersedes: supersedes,
		Evidence:   sanitizeAll(evidence),
		Confidence: confidence,
	}
	if err := s.appendDecisionRow(path, rec); err != nil {
		return models.DecisionRecord{}, err
	}
	return rec, nil
}

// SupersedeDecision replaces oldID with a new decision. It appends the
// new row, then a superseded marker reusing oldID, then records a
// decision_to_decision link from the new row to the old one.
func (s *Store) SupersedeDecision(oldID, newDomain, newSurface, newText string, evidence []string, confidence models.Confidence) (models.DecisionRecord, models.DecisionRecord, error) {
	old, err := s.FindDecision(oldID)
	if err != nil {
		return models.DecisionRecord{}, models.DecisionRecord{}, err
	}

	newRec, err := s.AddDecision(newDomain, newSurface, models.DecisionFinal, newText, oldID, evidence, confidence)
	if err != nil {
		return models.DecisionRecord{}, models.DecisionRecord{}, err
	}

	marker, err := s.MarkDecisionSuperseded(old)
	if err != nil {
		return models.DecisionRecord{}, models.DecisionRecord{}, err
	}

	if _, err := s.AddLink(models.LinkDecisionToDecision, "decision:"+newRec.ID, "decision:"+oldID, "supersedes", confidence); err != nil {
		return models.DecisionRecord{}, models.DecisionRecord{}, err
	}
	return newRec, marker, nil
}

// MarkDecisionSuperseded appends the marker row that retires old. The
// marker reuses the old id so last-line-wins collapses to superseded.
func (s *Store) MarkDecisionSuperseded(old models.DecisionRecord) (models.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marker := models.DecisionRecord{
		ID:        old.ID,
		CreatedAt: nowString(),
		Domain:    old.Domain,
		Surface:   old.Surface,
		Status:    models.DecisionSuperseded,
		Text:      old.Text,
	}
	if err := s.appendDecisionRow(s.path(DecisionsFile), marker); err != nil {
		return models.DecisionRecord{}, err
	}
	return marker, nil
}

// PromoteCandidate re-appends a pending candidate into the decisions log
// as final and retires the candidate row.
func (s *Store) PromoteCandidate(candidateID string) (models.DecisionRecord, error) {
	cands, err := s.loadDecisionRows(s.path(CandidatesFile))
	if err != nil {
		return models.DecisionRecord{}, err
	}
	var latest *models.DecisionRecord
	for i := range cands {
		if cands[i].ID == candidateID {
			latest = &cands[i]
		}
	}
	if latest == nil {
		return models.DecisionRecord{}, fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	if latest.Status != models.DecisionCandidate {
		return models.DecisionRecord{}, fmt.Errorf("candidate %s is %s: %w", candidateID, latest.Status, ErrNotOpen)
	}

	promoted, err := s.AddDecision(latest.Domain, latest.Surface, models.DecisionFinal, latest.Text, "", latest.Evidence, latest.Confidence)
	if err != nil {
		return models.DecisionRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	retired := *latest
	retired.CreatedAt = nowString()
	retired.Status = models.DecisionSuperseded
	if err := s.appendDecisionRow(s.path(CandidatesFile), retired); err != nil {
		return models.DecisionRecord{}, err
	}
	return promoted, nil
}

// ListDecisions returns decision rows. With includeHistory the full
// append order is returned; otherwise rows collapse to latest-per-id and
// sort by created_at descending. limit <= 0 means no limit.
func (s *Store) ListDecisions(domainFilter string, statusFilter models.DecisionStatus, includeHistory bool, limit int) ([]models.DecisionRecord, error) {
	rows, err := s.loadDecisionRows(s.path(DecisionsFile))
	if err != nil {
		return nil, err
	}

	if !includeHistory {
		rows = latestPerID(rows)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt > rows[j].CreatedAt
		})
	}

	out := make([]models.DecisionRecord, 0, len(rows))
	for _, r := range rows {
		if domainFilter != "" && !domainMatches(r.Domain, domainFilter) {
			continue
		}
		if statusFilter != "" && r.Status != statusFilter {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListCandidates returns the current (latest-per-id) candidate rows that
// are still pending.
func (s *Store) ListCandidates() ([]models.DecisionRecord, error) {
	rows, err := s.loadDecisionRows(s.path(CandidatesFile))
	if err != nil {
		return nil, err
	}
	var out []models.DecisionRecord
	for _, r := range latestPerID(rows) {
		if r.Status == models.DecisionCandidate {
			out = append(out, r)
		}
	}
	return out, nil
}

// CurrentDecisions derives the non-superseded view: latest row per id,
// minus ids marked superseded and ids referenced by another row's
// supersedes field. The view is recomputed from the file on every call.
func (s *Store) CurrentDecisions() ([]models.DecisionRecord, error) {
	rows, err := s.loadDecisionRows(s.path(DecisionsFile))
	if err != nil {
		return nil, err
	}

	replaced := map[string]bool{}
	for _, r := range rows {
		if r.Supersedes != "" {
			replaced[r.Supersedes] = true
		}
	}

	var out []models.DecisionRecord
	for _, r := range latestPerID(rows) {
		if r.Status == models.DecisionSuperseded || replaced[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// FindCurrentDecisionByText returns the current decision whose text
// matches exactly, preferring the latest on a duplicate.
func (s *Store) FindCurrentDecisionByText(text string) (models.DecisionRecord, error) {
	current, err := s.CurrentDecisions()
	if err != nil {
		return models.DecisionRecord{}, err
	}
	text = Line(text)
	for i := len(current) - 1; i >= 0; i-- {
		if current[i].Text == text {
			return current[i], nil
		}
	}
	return models.DecisionRecord{}, fmt.Errorf("decision with text %q: %w", text, ErrNotFound)
}

// FindDecision returns the latest row for id, superseded or not.
func (s *Store) FindDecision(id string) (models.DecisionRecord, error) {
	rows, err := s.loadDecisionRows(s.path(DecisionsFile))
	if err != nil {
		return models.DecisionRecord{}, err
	}
	for _, r := range latestPerID(rows) {
		if r.ID == id {
			return r, nil
		}
	}
	return models.DecisionRecord{}, fmt.Errorf("decision %s: %w", id, ErrNotFound)
}

func (s *Store) appendDecisionRow(path string, rec models.DecisionRecord) error {
	line, err := encodeLine(rec)
	if err != nil {
		return err
	}
	return s.gw.Commit(path, AppendRecord, line)
}

// loadDecisionRows reads and normalizes a decision log in file order.
// Normalization is read-time only; the file is never rewritten.
func (s *Store) loadDecisionRows(path string) ([]models.DecisionRecord, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	rows := decodeRows[models.DecisionRecord](lines)
	for i := range rows {
		normalizeDecision(&rows[i])
	}
	return rows, nil
}

// normalizeDecision fills the gaps legacy rows can have: missing status
// defaults to final, a missing id is derived from content, and unknown
// enum values coerce to safe defaults.
func normalizeDecision(r *models.DecisionRecord) {
	if r.Status == "" || !models.ValidDecisionStatus(r.Status) {
		r.Status = models.DecisionFinal
	}
	if !models.ValidConfidence(r.Confidence) {
		r.Confidence = ""
	}
	if r.ID == "" {
		r.ID = models.DerivedDecisionID(r.CreatedAt, r.Domain, r.Surface, r.Text)
	}
}

// latestPerID collapses rows to the last line per id, preserving the
// file position of each id's first appearance for stable ordering.
func latestPerID(rows []models.DecisionRecord) []models.DecisionRecord {
	index := map[string]int{}
	var out []models.DecisionRecord
	for _, r := range rows {
		if i, ok := index[r.ID]; ok {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

func domainMatches(domain, filter string) bool {
	return domain == filter || strings.HasPrefix(domain, filter+".")
}

func sanitizeAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if v := Line(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
