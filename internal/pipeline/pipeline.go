package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackbeanteam/lease-analysis-back/internal/extract"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
	"github.com/blackbeanteam/lease-analysis-back/internal/llm"
)

// Input text is capped before the LLM call to bound token usage.
const maxInputChars = 120_000

// Analyzer turns a lease document into a serialized analysis report. It is a
// stateless transformation; all coordination lives with the caller.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, data []byte, debug bool, jur *job.Jurisdiction) (json.RawMessage, error)
}

// Report is the terminal result payload persisted for a successful job.
type Report struct {
	OK    bool            `json:"ok"`
	Meta  extract.Meta    `json:"meta"`
	LLM   json.RawMessage `json:"llm"`
	Debug *DebugInfo      `json:"debug,omitempty"`
}

// DebugInfo is attached only when the job was enqueued with debug=true.
type DebugInfo struct {
	InputTextHead string `json:"input_text_head"`
	InputChars    int    `json:"input_chars"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

type LeaseAnalyzer struct {
	llm *llm.Client
}

func New(llmClient *llm.Client) *LeaseAnalyzer {
	return &LeaseAnalyzer{llm: llmClient}
}

func (a *LeaseAnalyzer) Analyze(ctx context.Context, filename string, data []byte, debug bool, jur *job.Jurisdiction) (json.RawMessage, error) {
	start := time.Now()

	res, err := extract.FromPDFBytes(filename, data)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if debug {
		slog.Info("extract summary",
			"filename", filename,
			"pages", res.Meta.PageCount,
			"sha256", res.Meta.SHA256)
	}

	inputText := res.InputText(maxInputChars)
	if debug {
		head := inputText
		if len(head) > 2000 {
			head = head[:2000] + " ...[truncated]"
		}
		slog.Info("llm input", "chars", len(inputText), "head", head)
	}

	llmOut, err := a.llm.Check(ctx, inputText, jur)
	if err != nil {
		return nil, fmt.Errorf("llm check: %w", err)
	}

	report := Report{
		OK:   true,
		Meta: res.Meta,
		LLM:  llmOut,
	}
	if debug {
		head := inputText
		if len(head) > 2000 {
			head = head[:2000] + " ...[truncated]"
		}
		report.Debug = &DebugInfo{
			InputTextHead: head,
			InputChars:    len(inputText),
			ElapsedMs:     time.Since(start).Milliseconds(),
		}
	}

	out, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return out, nil
}
