package job

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Phase annotations carried in Job.Message while a job is running.
// They are observability hints only, not distinct states.
const (
	PhaseDecoding    = "decoding"
	PhaseDownloading = "downloading"
	PhaseAnalyzing   = "analyzing"
)

// Jurisdiction is an optional hint passed through to the analysis stage.
type Jurisdiction struct {
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
}

// Job is one submitted lease-analysis request and its lifecycle record.
// At most one of ContentB64 / BlobPathname is populated.
type Job struct {
	ID           string          `json:"job_id"`
	Filename     string          `json:"filename"`
	ContentB64   string          `json:"b64,omitempty"`
	BlobPathname string          `json:"blob_pathname,omitempty"`
	Size         int64           `json:"size,omitempty"`
	Debug        bool            `json:"debug,omitempty"`
	Jurisdiction *Jurisdiction   `json:"jurisdiction,omitempty"`
	Status       Status          `json:"status"`
	Message      string          `json:"message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
