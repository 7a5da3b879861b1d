// ABOUTME: Backoff schedule for retrying transient commit failures
// ABOUTME: Exponential growth with jitter, capped so a retry never stalls long
package util

import (
	"math/rand/v2"
	"time"
)

const (
	// maxBackoff bounds a single sleep regardless of attempt count.
	maxBackoff = 30 * time.Second
	// maxShift keeps the per-attempt doubling out of overflow territory.
	maxShift = 30
)

// CalculateBackoff returns the sleep before retry number attempt: the
// base delay doubled per attempt, jittered by up to a quarter either
// way. Attempt zero (the first try) sleeps nothing.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
