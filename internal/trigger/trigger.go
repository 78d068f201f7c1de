package trigger

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Trigger issues the fire-and-forget wake-up call to the worker tick endpoint
// after an enqueue. The queue is the durable contract; this call only trims
// polling latency, so every outcome short of success is logged and dropped.
type Trigger struct {
	client       *http.Client
	baseOverride string
}

func New(timeout time.Duration, baseOverride string) *Trigger {
	return &Trigger{
		client:       &http.Client{Timeout: timeout},
		baseOverride: baseOverride,
	}
}

// Wake fires GET {base}/worker/tick?single=<jobID> in a detached goroutine.
// The base is the configured override or the enqueue request's own origin.
func (t *Trigger) Wake(r *http.Request, jobID string) {
	base := t.baseOverride
	if base == "" {
		base = selfBase(r)
	}
	url := fmt.Sprintf("%s/worker/tick?single=%s", base, jobID)

	go func() {
		resp, err := t.client.Get(url)
		if err != nil {
			slog.Info("self-trigger failed (ignored)", "url", url, "error", err)
			return
		}
		resp.Body.Close()
		slog.Info("self-trigger sent", "url", url, "status", resp.StatusCode)
	}()
}

func selfBase(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	return proto + "://" + r.Host
}
