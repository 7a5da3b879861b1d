// ABOUTME: Upload notes log written on behalf of the ingestion collaborator
// ABOUTME: One row per answered question about an uploaded file
package store

import (
	"fmt"

	"github.com/keelstore/keel/internal/models"
)

// AppendUploadNote records an answer captured during file ingestion.
func (s *Store) AppendUploadNote(uploadPath, answer string) (models.UploadNote, error) {
	answer = Line(answer)
	if answer == "" {
		return models.UploadNote{}, fmt.Errorf("note answer is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadUploadNotes()
	if err != nil {
		return models.UploadNote{}, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	note := models.UploadNote{
		ID:         allocateID("note", ids),
		CreatedAt:  nowString(),
		UploadPath: Line(uploadPath),
		Answer:     answer,
	}
	line, err := encodeLine(note)
	if err != nil {
		return models.UploadNote{}, err
	}
	if err := s.gw.Commit(s.path(NotesFile), AppendRecord, line); err != nil {
		return models.UploadNote{}, err
	}
	return note, nil
}

// ListUploadNotes returns notes in append order. limit <= 0 means no
// limit; otherwise the most recent rows are kept.
func (s *Store) ListUploadNotes(limit int) ([]models.UploadNote, error) {
	rows, err := s.loadUploadNotes()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (s *Store) loadUploadNotes() ([]models.UploadNote, error) {
	lines, err := readLines(s.path(NotesFile))
	if err != nil {
		return nil, err
	}
	return decodeRows[models.UploadNote](lines), nil
}
