// ABOUTME: Deterministic per-day id allocation shared by the ledger and inbox
// ABOUTME: Ids look like dec_2024_01_01_003; the sequence is derived by scanning
package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05"

// nowString renders the current wall time in the stored timestamp form.
// Timestamps are ordered and displayed as strings, never parsed back.
func nowString() string {
	return time.Now().Format(timestampLayout)
}

// allocateID returns the next free id for prefix and today's date, by
// scanning existing ids and taking max+1 of today's 3-digit sequence.
// Callers must hold the store's writer lock: the scan and the append
// that follows it have to sit in one critical section.
func allocateID(prefix string, existing []string) string {
	day := time.Now().Format("2006_01_02")
	idPrefix := fmt.Sprintf("%s_%s_", prefix, day)

	maxSeq := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, idPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return fmt.Sprintf("%s%03d", idPrefix, maxSeq+1)
}
