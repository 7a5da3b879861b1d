// ABOUTME: Project state document and the guarded global owner profile
// ABOUTME: Both are whole-document commits through the gateway
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keelstore/keel/internal/models"
)

// ProjectState reads project_state.json. A missing file yields a zero
// state carrying the project name.
func (s *Store) ProjectState() (models.ProjectState, error) {
	data, err := readFileCached(s.path(StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return models.ProjectState{Project: s.project}, nil
		}
		return models.ProjectState{}, fmt.Errorf("read project state: %w", err)
	}
	var st models.ProjectState
	if err := json.Unmarshal(data, &st); err != nil {
		return models.ProjectState{}, fmt.Errorf("parse project state: %w", err)
	}
	if st.Project == "" {
		st.Project = s.project
	}
	return st, nil
}

// WriteProjectState replaces project_state.json atomically.
func (s *Store) WriteProjectState(st models.ProjectState) error {
	st.Project = s.project
	st.Phase = Line(st.Phase)
	st.CurrentFocus = Line(st.CurrentFocus)
	st.UpdatedAt = nowString()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.Commit(s.path(StateFile), OverwriteStructured, data)
}

// SetCurrentFocus updates only the situational focus field.
func (s *Store) SetCurrentFocus(focus string) error {
	st, err := s.ProjectState()
	if err != nil {
		return err
	}
	st.CurrentFocus = focus
	return s.WriteProjectState(st)
}

// OwnerProfilePath is the guarded identity document shared by all
// projects under one data home.
func OwnerProfilePath(dataHome string) string {
	return filepath.Join(dataHome, "identity", "owner.json")
}

// WriteOwnerProfile commits the global owner profile through the
// delegated identity path. Ordinary Commit calls to this path fail.
func (s *Store) WriteOwnerProfile(p models.OwnerProfile) error {
	p.Name = Line(p.Name)
	p.Email = Line(p.Email)
	p.UpdatedAt = nowString()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode owner profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.CommitIdentity(OwnerProfilePath(s.dataHome), data)
}

// OwnerProfile reads the global owner profile, if present.
func (s *Store) OwnerProfile() (models.OwnerProfile, error) {
	data, err := readFileCached(OwnerProfilePath(s.dataHome))
	if err != nil {
		if os.IsNotExist(err) {
			return models.OwnerProfile{}, nil
		}
		return models.OwnerProfile{}, fmt.Errorf("read owner profile: %w", err)
	}
	var p models.OwnerProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.OwnerProfile{}, fmt.Errorf("parse owner profile: %w", err)
	}
	return p, nil
}
