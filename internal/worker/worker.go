package worker

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackbeanteam/lease-analysis-back/internal/blob"
	"github.com/blackbeanteam/lease-analysis-back/internal/common"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
	"github.com/blackbeanteam/lease-analysis-back/internal/jobstore"
	"github.com/blackbeanteam/lease-analysis-back/internal/pipeline"
	"github.com/blackbeanteam/lease-analysis-back/internal/queue"
)

// Worker drains pending jobs and drives each through the analysis pipeline.
// Each Tick is an independent invocation; all state lives in the store and the
// queue, so concurrent ticks coordinate only through the queue's atomic pop.
type Worker struct {
	store    jobstore.Store
	queue    queue.Queue
	blob     blob.Source
	analyzer pipeline.Analyzer
	batch    int
}

func New(store jobstore.Store, q queue.Queue, blobSource blob.Source, analyzer pipeline.Analyzer, batch int) *Worker {
	if batch <= 0 {
		batch = 3
	}
	return &Worker{
		store:    store,
		queue:    q,
		blob:     blobSource,
		analyzer: analyzer,
		batch:    batch,
	}
}

// Tick processes the given job when single is non-empty, otherwise pops up to
// the batch cap from the pending queue. It returns the number of jobs handled.
// Per-job failures land on the job record, never on the returned error; only a
// queue infrastructure failure is returned.
func (w *Worker) Tick(ctx context.Context, single string) (int, error) {
	slog.Info("worker tick start", "single", single)

	var ids []string
	if single != "" {
		ids = []string{single}
	} else {
		popped, err := w.queue.Pop(ctx, w.batch)
		if err != nil {
			return 0, fmt.Errorf("pop pending jobs: %w", err)
		}
		ids = popped
	}

	handled := 0
	for _, jobID := range ids {
		if jobID == "" {
			continue
		}
		handled++
		w.processOne(ctx, jobID)
	}

	slog.Info("worker tick done", "handled", handled)
	return handled, nil
}

// processOne runs a single job to a terminal state. Any failure is persisted
// as a job error so the poller never waits forever on a job this tick owned.
func (w *Worker) processOne(ctx context.Context, jobID string) {
	if err := w.store.SetStatus(ctx, jobID, job.StatusRunning, job.PhaseDecoding); err != nil {
		slog.Error("set running failed", "job_id", jobID, "error", err)
	}

	rec, err := w.store.Get(ctx, jobID)
	if err != nil {
		if common.IsNotFound(err) {
			// Expired or bogus ID; not an error for the batch.
			slog.Warn("popped job has no record", "job_id", jobID)
			return
		}
		w.fail(ctx, jobID, fmt.Sprintf("load job record: %v", err))
		return
	}
	if rec.Status.Terminal() {
		// Already finished through another tick (a single-ID wake-up leaves
		// the queue entry behind). Nothing left to do.
		slog.Info("popped job already finished", "job_id", jobID, "status", rec.Status)
		return
	}

	raw, err := w.resolvePayload(ctx, rec)
	if err != nil {
		w.fail(ctx, jobID, err.Error())
		return
	}

	if err := w.store.SetStatus(ctx, jobID, job.StatusRunning, job.PhaseAnalyzing); err != nil {
		slog.Error("set analyzing failed", "job_id", jobID, "error", err)
	}

	start := time.Now()
	result, err := w.analyzer.Analyze(ctx, rec.Filename, raw, rec.Debug, rec.Jurisdiction)
	if err != nil {
		w.fail(ctx, jobID, err.Error())
		return
	}
	slog.Info("analysis complete", "job_id", jobID, "elapsed_ms", time.Since(start).Milliseconds())

	if err := w.store.SaveResult(ctx, jobID, result); err != nil {
		slog.Error("save result failed", "job_id", jobID, "error", err)
		return
	}

	// Cleanup is best-effort; lifecycle policies elsewhere reclaim leftovers.
	if rec.BlobPathname != "" {
		if err := w.blob.Delete(ctx, rec.BlobPathname); err != nil {
			slog.Warn("blob cleanup failed", "job_id", jobID, "pathname", rec.BlobPathname, "error", err)
		}
	}
}

// resolvePayload returns the document bytes: fetched from blob storage when a
// pathname is present, otherwise decoded from the inline base64 payload.
func (w *Worker) resolvePayload(ctx context.Context, rec *job.Job) ([]byte, error) {
	if rec.BlobPathname != "" {
		if err := w.store.SetStatus(ctx, rec.ID, job.StatusRunning, job.PhaseDownloading); err != nil {
			slog.Error("set downloading failed", "job_id", rec.ID, "error", err)
		}
		raw, err := w.blob.Fetch(ctx, rec.BlobPathname)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}
		return raw, nil
	}

	if rec.ContentB64 == "" {
		return nil, fmt.Errorf("job has neither blob pathname nor inline content")
	}
	raw, err := base64.StdEncoding.DecodeString(rec.ContentB64)
	if err != nil {
		return nil, fmt.Errorf("decode inline content: %w", err)
	}
	return raw, nil
}

func (w *Worker) fail(ctx context.Context, jobID, msg string) {
	if err := w.store.SaveError(ctx, jobID, msg); err != nil {
		slog.Error("save error failed", "job_id", jobID, "error", err)
	}
}
