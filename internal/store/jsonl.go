// ABOUTME: Line-oriented JSON helpers for the append-only logs
// ABOUTME: Encoding is canonical single-line JSON; reads skip malformed rows
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// encodeLine marshals v to exactly one line of JSON with HTML escaping
// disabled, without the trailing newline json.Encoder adds.
func encodeLine(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// readLines returns the raw lines of a log file. A missing file is an
// empty log, not an error. Unparseable rows are the caller's concern;
// this only splits lines.
func readLines(path string) ([][]byte, error) {
	data, err := readFileCached(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}

	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log %s: %w", path, err)
	}
	return lines, nil
}

// decodeRows unmarshals each line into T, skipping rows that do not
// parse. One corrupt line never blocks the rest of history.
func decodeRows[T any](lines [][]byte) []T {
	rows := make([]T, 0, len(lines))
	for _, line := range lines {
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Optional read-through cache keyed by mtime+size. Off unless enabled;
// the baseline behavior is a full re-read on every scan.
var readCache = struct {
	sync.Mutex
	enabled bool
	entries map[string]cacheEntry
}{entries: map[string]cacheEntry{}}

type cacheEntry struct {
	mtime time.Time
	size  int64
	data  []byte
}

// EnableReadCache turns the mtime-keyed read cache on or off process-wide.
func EnableReadCache(on bool) {
	readCache.Lock()
	defer readCache.Unlock()
	readCache.enabled = on
	if !on {
		readCache.entries = map[string]cacheEntry{}
	}
}

func readFileCached(path string) ([]byte, error) {
	readCache.Lock()
	enabled := readCache.enabled
	readCache.Unlock()
	if !enabled {
		return os.ReadFile(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	readCache.Lock()
	if e, ok := readCache.entries[path]; ok && e.mtime.Equal(info.ModTime()) && e.size == info.Size() {
		data := e.data
		readCache.Unlock()
		return data, nil
	}
	readCache.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	readCache.Lock()
	readCache.entries[path] = cacheEntry{mtime: info.ModTime(), size: info.Size(), data: data}
	readCache.Unlock()
	return data, nil
}

// invalidateCache drops the cached copy of path after a write.
func invalidateCache(path string) {
	readCache.Lock()
	delete(readCache.entries, path)
	readCache.Unlock()
}
