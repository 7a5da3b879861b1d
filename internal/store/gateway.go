// ABOUTME: Canonical write gateway; every durable mutation passes through here
// ABOUTME: Sanitizes, enforces caps, then appends a line or atomically replaces a file
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Mode selects how a commit payload is applied to its target.
type Mode string

const (
	// AppendRecord appends the payload as exactly one newline-terminated line.
	AppendRecord Mode = "append-record"
	// OverwriteStructured atomically replaces a whole structured document.
	OverwriteStructured Mode = "overwrite-structured"
	// OverwriteText atomically replaces a whole narrative document.
	OverwriteText Mode = "overwrite-text"
)

// DefaultMaxCommitBytes caps the serialized size of any single commit.
const DefaultMaxCommitBytes = 200_000

// Gateway is the single write path to durable storage. A rejected commit
// writes nothing; there is no partial-success state.
type Gateway struct {
	identityRoot string
	maxBytes     int
}

// NewGateway builds a gateway. identityRoot is the absolute path of the
// cross-project identity area that ordinary commits must not touch.
func NewGateway(identityRoot string, maxBytes int) *Gateway {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCommitBytes
	}
	return &Gateway{identityRoot: filepath.Clean(identityRoot), maxBytes: maxBytes}
}

// Commit sanitizes payload and applies it to target in the given mode.
// Any failure is reported as an error and leaves target untouched.
func (g *Gateway) Commit(target string, mode Mode, payload []byte) error {
	if g.inIdentityArea(target) {
		return fmt.Errorf("%w: %s", ErrIdentityArea, target)
	}
	return g.commit(target, mode, payload)
}

// CommitIdentity is the delegated path for the global identity area.
// It accepts only whole-document structured payloads.
func (g *Gateway) CommitIdentity(target string, payload []byte) error {
	if !g.inIdentityArea(target) {
		return fmt.Errorf("%w: %s is outside the identity area", ErrRejected, target)
	}
	return g.commit(target, OverwriteStructured, payload)
}

func (g *Gateway) commit(target string, mode Mode, payload []byte) error {
	var cleaned []byte
	switch mode {
	case AppendRecord, OverwriteStructured:
		cleaned = []byte(strings.TrimSpace(StripMarkers(string(payload))))
	case OverwriteText:
		cleaned = []byte(Text(string(payload)))
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrRejected, mode)
	}

	if len(cleaned) == 0 {
		return fmt.Errorf("%w: empty payload", ErrRejected)
	}
	if len(cleaned) > g.maxBytes {
		return fmt.Errorf("%w: payload is %d bytes, cap is %d", ErrRejected, len(cleaned), g.maxBytes)
	}

	if mode == AppendRecord {
		if strings.ContainsAny(string(cleaned), "\r\n") {
			return fmt.Errorf("%w: record serializes to more than one line", ErrRejected)
		}
		return g.appendLine(target, cleaned)
	}
	return g.replaceFile(target, cleaned)
}

// appendLine writes one newline-terminated line in a single write call,
// so concurrent appenders interleave whole lines, never partial ones.
func (g *Gateway) appendLine(target string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", target, err)
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	_, werr := f.Write(append(line, '\n'))
	cerr := f.Close()
	invalidateCache(target)
	if werr != nil {
		return fmt.Errorf("append to %s: %w", target, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", target, cerr)
	}
	return nil
}

// replaceFile writes to a temp file in the same directory and renames it
// over the target, so a concurrent reader never sees a torn document.
func (g *Gateway) replaceFile(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", target, err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(target), uuid.NewString()[:8]))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp for %s: %w", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", target, err)
	}
	invalidateCache(target)
	return nil
}

func (g *Gateway) inIdentityArea(target string) bool {
	target = filepath.Clean(target)
	return target == g.identityRoot || strings.HasPrefix(target, g.identityRoot+string(filepath.Separator))
}
