package blob

import (
	"context"
	"fmt"
)

// Source provides access to uploaded documents by their private pathname.
type Source interface {
	// Fetch returns the raw bytes of the blob. A non-success response from the
	// backing store is reported as *FetchStatusError.
	Fetch(ctx context.Context, pathname string) ([]byte, error)
	// Delete removes the blob. Callers treat failures as best-effort cleanup.
	Delete(ctx context.Context, pathname string) error
}

// FetchStatusError carries the backing store's status for a failed fetch so the
// caller can surface it in the job's error message.
type FetchStatusError struct {
	StatusCode int
	Body       string
}

func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("blob fetch failed: %d", e.StatusCode)
}
