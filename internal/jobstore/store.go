package jobstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

// Store is durable keyed storage for job records. Implementations must be safe
// for concurrent use and every mutation must be visible to subsequent Get calls
// from any caller.
type Store interface {
	// Create writes a new record with status queued, applies the store TTL and
	// returns the generated job ID.
	Create(ctx context.Context, j *job.Job) (string, error)
	// Get returns the full current record, or common.ErrJobNotFound when the
	// record is absent or expired. Infrastructure failures are reported as
	// common.ErrStoreUnavailable, never as not-found.
	Get(ctx context.Context, jobID string) (*job.Job, error)
	// SetStatus partially updates status and, when non-empty, message. It is a
	// no-op for expired records and for records already in a terminal state.
	SetStatus(ctx context.Context, jobID string, status job.Status, message string) error
	// SaveResult moves the job to done, stores the serialized result, stamps
	// finished_at and clears any superseded error message. Like SetStatus it
	// is a no-op for expired records and records already in a terminal state.
	SaveResult(ctx context.Context, jobID string, result json.RawMessage) error
	// SaveError moves the job to error with the given message and stamps
	// finished_at, under the same no-op rules as SaveResult.
	SaveError(ctx context.Context, jobID string, errMsg string) error
}

// newJobID returns a dashless 128-bit random token.
func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
