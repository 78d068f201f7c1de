package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blackbeanteam/lease-analysis-back/internal/blob"
	"github.com/blackbeanteam/lease-analysis-back/internal/config"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
	"github.com/blackbeanteam/lease-analysis-back/internal/jobstore"
	"github.com/blackbeanteam/lease-analysis-back/internal/queue"
	"github.com/blackbeanteam/lease-analysis-back/internal/trigger"
	"github.com/blackbeanteam/lease-analysis-back/internal/worker"
)

type fakeAnalyzer struct{}

func (fakeAnalyzer) Analyze(_ context.Context, _ string, data []byte, _ bool, _ *job.Jurisdiction) (json.RawMessage, error) {
	out, _ := json.Marshal(map[string]any{"ok": true, "bytes": len(data)})
	return out, nil
}

type fakeBlob struct {
	objects map[string][]byte
}

func (b fakeBlob) Fetch(_ context.Context, pathname string) ([]byte, error) {
	raw, ok := b.objects[pathname]
	if !ok {
		return nil, &blob.FetchStatusError{StatusCode: nethttp.StatusNotFound}
	}
	return raw, nil
}

func (b fakeBlob) Delete(_ context.Context, _ string) error { return nil }

func newTestServer(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()

	store := jobstore.NewMemoryStore(time.Hour)
	q := queue.NewMemoryQueue()
	w := worker.New(store, q, fakeBlob{objects: objects}, fakeAnalyzer{}, 3)

	h := &Handlers{
		Store: store,
		Queue: q,
		Worker: w,
		// Port 1 is never listening; the wake-up is fire-and-forget so a
		// failed call must not affect any response.
		Trigger: trigger.New(50*time.Millisecond, "http://127.0.0.1:1"),
		Config: config.Config{
			EnqueueRateLimit:  100,
			EnqueueRateWindow: time.Minute,
		},
	}

	r := chi.NewRouter()
	h.Routers(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func pdfB64() string {
	return base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\nfake lease document"))
}

func postJSON(t *testing.T, url string, body any) *nethttp.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := nethttp.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestEnqueue_RejectsEmptyRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/enqueue", map[string]any{"filename": "lease.pdf"})
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEnqueue_RejectsNonPDFInline(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/enqueue", map[string]any{
		"content_b64": base64.StdEncoding.EncodeToString([]byte("plain text, not a pdf")),
	})
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEnqueue_AcceptsInlineAndReportsQueued(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/enqueue", map[string]any{
		"content_b64": pdfB64(),
		"filename":    "lease.pdf",
	})
	if resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != string(job.StatusQueued) {
		t.Errorf("expected queued status, got %v", body["status"])
	}
	if id, _ := body["job_id"].(string); len(id) != 32 {
		t.Errorf("expected 32-char job id, got %v", body["job_id"])
	}
}

func TestEnqueueTickPoll_InlineRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/enqueue", map[string]any{"content_b64": pdfB64()})
	if resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("enqueue: expected 202, got %d", resp.StatusCode)
	}
	jobID := decodeBody(t, resp)["job_id"].(string)

	tickResp, err := nethttp.Get(srv.URL + "/worker/tick?single=" + jobID)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	tick := decodeBody(t, tickResp)
	if tick["handled"] != float64(1) {
		t.Errorf("expected 1 handled, got %v", tick["handled"])
	}
	if tick["single"] != jobID {
		t.Errorf("tick response should echo the single id, got %v", tick["single"])
	}

	pollResp, err := nethttp.Get(srv.URL + "/jobs/" + jobID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	poll := decodeBody(t, pollResp)
	if poll["status"] != string(job.StatusDone) {
		t.Fatalf("expected done, got %v (message %v)", poll["status"], poll["message"])
	}
	if poll["result"] == nil {
		t.Error("done job must expose a result")
	}
	if _, ok := poll["message"]; ok {
		t.Error("done job must not carry a message")
	}
}

func TestEnqueueTickPoll_BlobMissingEndsInError(t *testing.T) {
	srv := newTestServer(t, map[string][]byte{})

	resp := postJSON(t, srv.URL+"/enqueue", map[string]any{"pathname": "uploads/gone.pdf"})
	if resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("enqueue: expected 202, got %d", resp.StatusCode)
	}
	jobID := decodeBody(t, resp)["job_id"].(string)

	tickResp, err := nethttp.Get(srv.URL + "/worker/tick?single=" + jobID)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	tickResp.Body.Close()

	pollResp, err := nethttp.Get(srv.URL + "/jobs/" + jobID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	poll := decodeBody(t, pollResp)
	if poll["status"] != string(job.StatusError) {
		t.Errorf("expected error, got %v", poll["status"])
	}
	if msg, _ := poll["message"].(string); msg == "" {
		t.Error("failed job must expose a message")
	}
	if _, ok := poll["result"]; ok {
		t.Error("failed job must not expose a result")
	}
}

func TestEnqueue_PathnameAliases(t *testing.T) {
	srv := newTestServer(t, map[string][]byte{
		"uploads/a.pdf": []byte("%PDF-1.4 a"),
	})

	for _, field := range []string{"pathname", "path", "blob_pathname"} {
		resp := postJSON(t, srv.URL+"/enqueue", map[string]any{field: "uploads/a.pdf"})
		if resp.StatusCode != nethttp.StatusAccepted {
			t.Errorf("field %q: expected 202, got %d", field, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestPollJob_UnknownID(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := nethttp.Get(srv.URL + "/jobs/deadbeefdeadbeefdeadbeefdeadbeef")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestWorkerTick_BatchDrainsThreeAtATime(t *testing.T) {
	srv := newTestServer(t, nil)

	ids := make([]string, 4)
	for i := range ids {
		resp := postJSON(t, srv.URL+"/enqueue", map[string]any{
			"content_b64": pdfB64(),
			"filename":    fmt.Sprintf("doc-%d.pdf", i),
		})
		ids[i] = decodeBody(t, resp)["job_id"].(string)
	}

	tickResp, err := nethttp.Get(srv.URL + "/worker/tick")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := decodeBody(t, tickResp)["handled"]; got != float64(3) {
		t.Fatalf("expected 3 handled, got %v", got)
	}

	statuses := map[string]int{}
	for _, id := range ids {
		resp, err := nethttp.Get(srv.URL + "/jobs/" + id)
		if err != nil {
			t.Fatalf("poll %s: %v", id, err)
		}
		statuses[decodeBody(t, resp)["status"].(string)]++
	}
	if statuses[string(job.StatusDone)] != 3 || statuses[string(job.StatusQueued)] != 1 {
		t.Fatalf("expected 3 done and 1 queued, got %v", statuses)
	}

	tickResp, err = nethttp.Get(srv.URL + "/worker/tick")
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if got := decodeBody(t, tickResp)["handled"]; got != float64(1) {
		t.Fatalf("expected 1 handled on second tick, got %v", got)
	}
}

func TestWorkerTick_EmptyQueue(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := nethttp.Get(srv.URL + "/worker/tick")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := decodeBody(t, resp)["handled"]; got != float64(0) {
		t.Fatalf("expected 0 handled, got %v", got)
	}
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := nethttp.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := decodeBody(t, resp)
	if body["message"] == "" {
		t.Error("root banner missing")
	}
}
