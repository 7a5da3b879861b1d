// ABOUTME: Narrative documents: project map and working doc
// ABOUTME: Replaced whole through the gateway's overwrite-text mode
package store

import (
	"fmt"
	"os"
)

// WriteDocument replaces a narrative document. name must be one of the
// known document file names.
func (s *Store) WriteDocument(name, content string) error {
	if name != ProjectMapFile && name != WorkingDocFile {
		return fmt.Errorf("%w: unknown document %q", ErrRejected, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.Commit(s.path(name), OverwriteText, []byte(content))
}

// ReadDocument returns a narrative document's content. A missing file is
// an empty document.
func (s *Store) ReadDocument(name string) (string, error) {
	if name != ProjectMapFile && name != WorkingDocFile {
		return "", fmt.Errorf("unknown document %q", name)
	}
	data, err := readFileCached(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read document %s: %w", name, err)
	}
	return string(data), nil
}
