// ABOUTME: Append-only inbox of open items: clarifications, conflicts, pending work
// ABOUTME: Resolution appends a resolved row for the same id; last line wins
package store

import (
	"fmt"
	"sort"

	"github.com/keelstore/keel/internal/models"
)

const resolvedSummaryLen = 120

// AppendInboxItem appends a new open item with a freshly allocated id.
func (s *Store) AppendInboxItem(itemType models.InboxItemType, text string, refs []string) (models.InboxItem, error) {
	if !models.ValidInboxType(itemType) {
		return models.InboxItem{}, fmt.Errorf("unknown inbox item type %q", itemType)
	}
	item := models.InboxItem{
		Type: itemType,
		Text: Line(text),
		Refs: sanitizeAll(refs),
	}
	return s.appendInbox(item)
}

// AppendConflictItem appends an open conflict item carrying the grouped
// decision ids and their disagreeing texts.
func (s *Store) AppendConflictItem(domain, surface, text string, decisionIDs, texts []string) (models.InboxItem, error) {
	item := models.InboxItem{
		Type:        models.InboxConflict,
		Text:        Line(text),
		Domain:      domain,
		Surface:     surface,
		DecisionIDs: decisionIDs,
		Texts:       sanitizeAll(texts),
	}
	for _, id := range decisionIDs {
		item.Refs = append(item.Refs, "decision:"+id)
	}
	return s.appendInbox(item)
}

func (s *Store) appendInbox(item models.InboxItem) (models.InboxItem, error) {
	if item.Text == "" {
		return models.InboxItem{}, fmt.Errorf("inbox item text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadInboxRows()
	if err != nil {
		return models.InboxItem{}, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	item.ID = allocateID("inbox", ids)
	item.CreatedAt = nowString()
	item.Status = models.InboxOpen

	if err := s.appendInboxRow(item); err != nil {
		return models.InboxItem{}, err
	}
	return item, nil
}

// ResolveInboxItem appends a resolved row for id. It fails without
// writing when the id has no prior open row.
func (s *Store) ResolveInboxItem(id, note string, refs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadInboxRows()
	if err != nil {
		return err
	}
	var latest *models.InboxItem
	for i := range rows {
		if rows[i].ID == id {
			latest = &rows[i]
		}
	}
	if latest == nil {
		return fmt.Errorf("inbox item %s: %w", id, ErrNotFound)
	}
	if latest.Status != models.InboxOpen {
		return fmt.Errorf("inbox item %s: %w", id, ErrNotOpen)
	}

	text := "Resolved: " + truncateLine(latest.Text, resolvedSummaryLen)
	if note = Line(note); note != "" {
		text += " - " + note
	}

	resolved := models.InboxItem{
		ID:          latest.ID,
		CreatedAt:   nowString(),
		Type:        latest.Type,
		Status:      models.InboxResolved,
		Text:        text,
		Refs:        append(append([]string(nil), latest.Refs...), sanitizeAll(refs)...),
		Domain:      latest.Domain,
		Surface:     latest.Surface,
		DecisionIDs: latest.DecisionIDs,
		Texts:       latest.Texts,
	}
	return s.appendInboxRow(resolved)
}

// ListOpenInbox collapses to latest-per-id, keeps open items, sorts by
// created_at descending, and truncates to limit (<= 0 means no limit).
func (s *Store) ListOpenInbox(limit int) ([]models.InboxItem, error) {
	rows, err := s.loadInboxRows()
	if err != nil {
		return nil, err
	}

	var out []models.InboxItem
	for _, r := range latestInboxPerID(rows) {
		if r.Status == models.InboxOpen {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListInbox returns inbox rows, either full history in append order or
// collapsed to latest-per-id.
func (s *Store) ListInbox(includeHistory bool) ([]models.InboxItem, error) {
	rows, err := s.loadInboxRows()
	if err != nil {
		return nil, err
	}
	if includeHistory {
		return rows, nil
	}
	return latestInboxPerID(rows), nil
}

// OpenConflictItemFor returns the open conflict item for a (domain,
// surface) key, if one exists. Used to keep conflict surfacing idempotent.
func (s *Store) OpenConflictItemFor(domain, surface string) (models.InboxItem, bool, error) {
	rows, err := s.loadInboxRows()
	if err != nil {
		return models.InboxItem{}, false, err
	}
	for _, r := range latestInboxPerID(rows) {
		if r.Type == models.InboxConflict && r.Status == models.InboxOpen && r.Domain == domain && r.Surface == surface {
			return r, true, nil
		}
	}
	return models.InboxItem{}, false, nil
}

func (s *Store) appendInboxRow(item models.InboxItem) error {
	line, err := encodeLine(item)
	if err != nil {
		return err
	}
	return s.gw.Commit(s.path(InboxFile), AppendRecord, line)
}

func (s *Store) loadInboxRows() ([]models.InboxItem, error) {
	lines, err := readLines(s.path(InboxFile))
	if err != nil {
		return nil, err
	}
	return decodeRows[models.InboxItem](lines), nil
}

func latestInboxPerID(rows []models.InboxItem) []models.InboxItem {
	index := map[string]int{}
	var out []models.InboxItem
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

func truncateLine(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
