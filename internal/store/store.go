// ABOUTME: Store ties the per-file substores to one project's state directory
// ABOUTME: Owns the writer lock that keeps id allocation and appends atomic
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// Log and document file names inside a project state directory.
const (
	DecisionsFile  = "decisions.jsonl"
	CandidatesFile = "decision_candidates.jsonl"
	InboxFile      = "inbox.jsonl"
	LinksFile      = "links.jsonl"
	NotesFile      = "upload_notes.jsonl"
	StateFile      = "project_state.json"
	ProjectMapFile = "project_map.md"
	WorkingDocFile = "working_doc.md"
)

// Store is the canonical truth store for one project. All mutations go
// through the gateway; reads re-scan the files on every call.
type Store struct {
	dataHome string
	project  string
	stateDir string
	gw       *Gateway

	// Serializes writers. Id allocation is a read-then-append, so the
	// scan and the append must happen under one lock.
	mu sync.Mutex
}

// DefaultDataHome returns the keel data directory, honoring the
// KEEL_DATA_HOME override for testing.
func DefaultDataHome() string {
	if v := os.Getenv("KEEL_DATA_HOME"); v != "" {
		return v
	}
	return filepath.Join(xdg.DataHome, "keel")
}

// Open initializes the store for a project, creating its directories.
// maxCommit bounds single commits through the gateway; zero or negative
// means DefaultMaxCommitBytes.
func Open(dataHome, project string, maxCommit int) (*Store, error) {
	if project == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if maxCommit <= 0 {
		maxCommit = DefaultMaxCommitBytes
	}
	stateDir := filepath.Join(dataHome, "projects", project, "state")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	identityRoot := filepath.Join(dataHome, "identity")
	if err := os.MkdirAll(identityRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create identity dir: %w", err)
	}
	return &Store{
		dataHome: dataHome,
		project:  project,
		stateDir: stateDir,
		gw:       NewGateway(identityRoot, maxCommit),
	}, nil
}

// Project returns the project name this store is bound to.
func (s *Store) Project() string { return s.project }

// StateDir returns the project's state directory.
func (s *Store) StateDir() string { return s.stateDir }

// Gateway exposes the write gateway for callers that commit documents
// directly (narrative docs, identity delegation).
func (s *Store) Gateway() *Gateway { return s.gw }

func (s *Store) path(name string) string {
	return filepath.Join(s.stateDir, name)
}
