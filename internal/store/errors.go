// ABOUTME: Sentinel errors shared by the gateway and the per-file stores
// ABOUTME: Callers match with errors.Is; every failure means nothing was written
package store

import "errors"

var (
	// ErrRejected means the gateway refused the payload (size, shape, or
	// sanitization violation). The target file was not touched.
	ErrRejected = errors.New("commit rejected")

	// ErrIdentityArea means an ordinary commit targeted the global
	// identity area, which only the delegated path may write.
	ErrIdentityArea = errors.New("identity area requires delegated commit")

	// ErrNotFound means no row exists for the requested id.
	ErrNotFound = errors.New("not found")

	// ErrNotOpen means the id exists but has no open row to resolve.
	ErrNotOpen = errors.New("no open row for id")
)
