// ABOUTME: Append-only provenance links between uploads, decisions, deliverables
// ABOUTME: Content-hash ids make identical links idempotent under retry
package store

import (
	"fmt"

	"github.com/keelstore/keel/internal/models"
)

// AddLink appends a provenance edge. Re-adding an identical edge (same
// type, from, to, reason) writes a second row with the same id, which
// collapses under last-line-wins reads.
func (s *Store) AddLink(linkType models.LinkType, from, to, reason string, confidence models.Confidence) (models.LinkEvent, error) {
	if !models.ValidLinkType(linkType) {
		return models.LinkEvent{}, fmt.Errorf("unknown link type %q", linkType)
	}
	from = Line(from)
	to = Line(to)
	if from == "" || to == "" {
		return models.LinkEvent{}, fmt.Errorf("link endpoints are required")
	}
	if !models.ValidConfidence(confidence) {
		return models.LinkEvent{}, fmt.Errorf("unknown confidence %q", confidence)
	}
	reason = Line(reason)

	ev := models.LinkEvent{
		ID:         models.LinkID(linkType, from, to, reason),
		CreatedAt:  nowString(),
		Type:       linkType,
		From:       from,
		To:         to,
		Reason:     reason,
		Confidence: confidence,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := encodeLine(ev)
	if err != nil {
		return models.LinkEvent{}, err
	}
	if err := s.gw.Commit(s.path(LinksFile), AppendRecord, line); err != nil {
		return models.LinkEvent{}, err
	}
	return ev, nil
}

// ListLinks returns link events collapsed to one row per id, optionally
// filtered by type, newest first. limit <= 0 means no limit.
func (s *Store) ListLinks(typeFilter models.LinkType, limit int) ([]models.LinkEvent, error) {
	lines, err := readLines(s.path(LinksFile))
	if err != nil {
		return nil, err
	}
	rows := decodeRows[models.LinkEvent](lines)

	seen := map[string]bool{}
	var out []models.LinkEvent
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		if typeFilter != "" && r.Type != typeFilter {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
