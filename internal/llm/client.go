package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

const (
	defaultRetries = 3
	maxTokens      = 2000
)

// Client runs the JSON-schema-constrained lease compliance check. Check is a
// pure transformation of contract text; it holds no job state.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Check sends the contract text to the model and returns the validated raw
// JSON analysis. Invalid or malformed model output is retried up to
// defaultRetries times before failing.
func (c *Client) Check(ctx context.Context, contractText string, jur *job.Jurisdiction) (json.RawMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "lease_struct",
				Schema: json.RawMessage(leaseSchemaJSON),
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(contractText, jur)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateChatCompletion(callCtx, req)
		cancel()
		if err != nil {
			lastErr = err
			slog.Warn("llm call failed", "attempt", attempt, "error", err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in model response")
			slog.Warn("llm returned no choices", "attempt", attempt)
			continue
		}

		raw := []byte(resp.Choices[0].Message.Content)
		if err := ValidateOutput(raw); err != nil {
			lastErr = err
			slog.Warn("llm output rejected", "attempt", attempt, "error", err)
			continue
		}

		slog.Info("llm check complete", "model", c.model, "attempt", attempt, "bytes", len(raw))
		return raw, nil
	}
	return nil, fmt.Errorf("LLM call failed after %d retries: %w", defaultRetries, lastErr)
}
