package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/blackbeanteam/lease-analysis-back/internal/common"
	"github.com/blackbeanteam/lease-analysis-back/internal/config"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
	"github.com/blackbeanteam/lease-analysis-back/internal/jobstore"
	"github.com/blackbeanteam/lease-analysis-back/internal/queue"
	"github.com/blackbeanteam/lease-analysis-back/internal/redis"
	"github.com/blackbeanteam/lease-analysis-back/internal/trigger"
	"github.com/blackbeanteam/lease-analysis-back/internal/validation"
	"github.com/blackbeanteam/lease-analysis-back/internal/worker"
)

type Handlers struct {
	Store   jobstore.Store
	Queue   queue.Queue
	Worker  *worker.Worker
	Trigger *trigger.Trigger
	Redis   *redis.Service // optional, used by readiness checks
	Config  config.Config
}

func (h *Handlers) Routers(r chi.Router) {
	r.Get("/", h.root)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.Config.EnqueueRateLimit, h.Config.EnqueueRateWindow))
		r.Post("/enqueue", h.enqueue)
	})

	r.Get("/jobs/{id}", h.pollJob)
	r.Get("/worker/tick", h.workerTick)
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Lease Analysis Backend is running",
	})
}

type enqueueBody struct {
	validation.EnqueueRequest
	// Aliases tolerated for the pathname field.
	Path         string `json:"path"`
	BlobPathname string `json:"blob_pathname"`
	Name         string `json:"name"`
}

func (h *Handlers) enqueue(w http.ResponseWriter, r *http.Request) {
	var body enqueueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req := body.EnqueueRequest
	if req.Pathname == "" {
		if body.Path != "" {
			req.Pathname = body.Path
		} else if body.BlobPathname != "" {
			req.Pathname = body.BlobPathname
		}
	}
	if req.Filename == "" {
		req.Filename = body.Name
	}
	if req.Filename == "" {
		req.Filename = "Lease.pdf"
	}

	if validationErrs := validation.ValidateEnqueue(&req); len(validationErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": validationErrs,
		})
		return
	}

	j := &job.Job{
		Filename:     req.Filename,
		ContentB64:   req.ContentB64,
		BlobPathname: req.Pathname,
		Size:         req.Size,
		Debug:        req.Debug,
		Jurisdiction: req.Jurisdiction,
	}

	// Record strictly before queue entry: the queue must never hold an ID
	// without a record behind it. A crash between the two leaves an orphan
	// record that the TTL reclaims.
	jobID, err := h.Store.Create(r.Context(), j)
	if err != nil {
		slog.Error("failed to create job record", "error", err)
		http.Error(w, "enqueue failed", http.StatusInternalServerError)
		return
	}
	if err := h.Queue.Push(r.Context(), jobID); err != nil {
		slog.Error("failed to push job", "job_id", jobID, "error", err)
		http.Error(w, "enqueue failed", http.StatusInternalServerError)
		return
	}

	h.Trigger.Wake(r, jobID)

	slog.Info("job enqueued",
		"job_id", jobID,
		"filename", req.Filename,
		"inline", req.ContentB64 != "",
		"pathname", req.Pathname)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": job.StatusQueued,
	})
}

func (h *Handlers) pollJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	rec, err := h.Store.Get(r.Context(), jobID)
	if err != nil {
		if common.IsNotFound(err) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to get job", "job_id", jobID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"job_id": rec.ID,
		"status": rec.Status,
	}
	if rec.Message != "" {
		resp["message"] = rec.Message
	}
	if rec.Result != nil {
		resp["result"] = rec.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) workerTick(w http.ResponseWriter, r *http.Request) {
	single := r.URL.Query().Get("single")

	handled, err := h.Worker.Tick(r.Context(), single)
	if err != nil {
		slog.Error("worker tick failed", "error", err)
		http.Error(w, "tick failed", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"handled": handled}
	if single != "" {
		resp["single"] = single
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}
