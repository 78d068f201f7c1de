package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HelperSource talks to the Node blob-helper routes deployed next to the API
// (POST {base}/api/blob/fetch and {base}/api/blob/delete).
type HelperSource struct {
	base         string
	fetchClient  *http.Client
	deleteClient *http.Client
}

func NewHelperSource(base string, fetchTimeout, deleteTimeout time.Duration) *HelperSource {
	return &HelperSource{
		base:         strings.TrimRight(base, "/"),
		fetchClient:  &http.Client{Timeout: fetchTimeout},
		deleteClient: &http.Client{Timeout: deleteTimeout},
	}
}

type pathnameBody struct {
	Pathname string `json:"pathname"`
}

func (s *HelperSource) Fetch(ctx context.Context, pathname string) ([]byte, error) {
	resp, err := s.post(ctx, s.fetchClient, s.base+"/api/blob/fetch", pathname)
	if err != nil {
		return nil, fmt.Errorf("blob fetch: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blob fetch read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Keep the first part of the body so logs show *why* the helper refused.
		body := string(raw)
		if len(body) > 200 {
			body = body[:200]
		}
		slog.Error("blob fetch failed", "pathname", pathname, "status", resp.StatusCode, "body", body)
		return nil, &FetchStatusError{StatusCode: resp.StatusCode, Body: body}
	}

	slog.Info("blob fetched", "pathname", pathname, "bytes", len(raw))
	return raw, nil
}

func (s *HelperSource) Delete(ctx context.Context, pathname string) error {
	resp, err := s.post(ctx, s.deleteClient, s.base+"/api/blob/delete", pathname)
	if err != nil {
		return fmt.Errorf("blob delete: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("blob delete failed: %d", resp.StatusCode)
	}
	slog.Info("blob deleted", "pathname", pathname)
	return nil
}

func (s *HelperSource) post(ctx context.Context, client *http.Client, url, pathname string) (*http.Response, error) {
	body, err := json.Marshal(pathnameBody{Pathname: pathname})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}
