package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultModel        = "claude-sonnet-4-5-20250929"
	anthropicAPIBase    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
	defaultMaxTokens    = 4096
	defaultTimeout      = 30 * time.Second
	tracerName          = "github.com/ghostlabs/ghost-core"
)

// AnthropicClient implements Port via a hand-rolled REST client (no official
// SDK dependency).
type AnthropicClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	maxTokens    int
	client       *http.Client
	maxRetries   int
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithBaseURL overrides the API base (used in tests to point at an httptest server).
func WithBaseURL(url string) AnthropicOption {
	return func(c *AnthropicClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) { c.defaultModel = model }
}

// WithMaxTokens overrides the default completion budget.
func WithMaxTokens(n int) AnthropicOption {
	return func(c *AnthropicClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTimeout overrides the per-call hard timeout.
func WithTimeout(d time.Duration) AnthropicOption {
	return func(c *AnthropicClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// NewAnthropicClient constructs a client for the given API key.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:       apiKey,
		baseURL:      anthropicAPIBase,
		defaultModel: defaultModel,
		maxTokens:    defaultMaxTokens,
		client:       &http.Client{Timeout: defaultTimeout},
		maxRetries:   3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type anthropicRequestBody struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	System      string           `json:"system,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Messages    []map[string]any `json:"messages"`
	Tools       []map[string]any `json:"tools,omitempty"`
	ToolChoice  map[string]any   `json:"tool_choice,omitempty"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete issues a single non-streaming completion call, mapping the
// provider's stop_reason and tool_use blocks into the Port's normalized
// shapes.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.complete",
		trace.WithAttributes(attribute.String("llm.model", model)))
	defer span.End()

	body := c.buildBody(model, req)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.doRequest(ctx, body)
		if err == nil {
			span.SetAttributes(attribute.Int("llm.tokens.total", resp.Usage.Total))
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		time.Sleep(time.Duration(1<<uint(attempt)) * 200 * time.Millisecond)
	}
	span.RecordError(lastErr)
	return Response{}, lastErr
}

// Health reports whether the provider is reachable and the key accepted.
func (c *AnthropicClient) Health(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	return resp.StatusCode < 400
}

func (c *AnthropicClient) buildBody(model string, req Request) anthropicRequestBody {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	body := anthropicRequestBody{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}

	for _, m := range req.Messages {
		switch {
		case m.ToolCallID != "":
			body.Messages = append(body.Messages, map[string]any{
				"role": "user",
				"content": []map[string]any{{
					"type":        "tool_result",
					"tool_use_id": m.ToolCallID,
					"content":     m.Content,
				}},
			})
		case len(m.ToolCalls) > 0:
			blocks := make([]map[string]any, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, map[string]any{"type": "text", "text": m.Content})
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Function.Name,
					"input": json.RawMessage(tc.Function.Arguments),
				})
			}
			body.Messages = append(body.Messages, map[string]any{"role": "assistant", "content": blocks})
		default:
			body.Messages = append(body.Messages, map[string]any{"role": m.Role, "content": m.Content})
		}
	}

	for _, t := range req.Tools {
		body.Tools = append(body.Tools, map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": t.Parameters,
		})
	}
	switch req.ToolChoice {
	case "":
	case "auto":
		if len(req.Tools) > 0 {
			body.ToolChoice = map[string]any{"type": "auto"}
		}
	case "none":
		// Omit tools entirely rather than sending an unsupported choice.
		body.Tools = nil
	default:
		body.ToolChoice = map[string]any{"type": "tool", "name": req.ToolChoice}
	}

	return body
}

type retryableError struct{ err error }

func (r *retryableError) Error() string { return r.err.Error() }
func (r *retryableError) Unwrap() error { return r.err }

func isRetryable(err error) bool {
	_, ok := err.(*retryableError)
	return ok
}

func (c *AnthropicClient) doRequest(ctx context.Context, body anthropicRequestBody) (Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, &retryableError{fmt.Errorf("llm: request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == 429 || resp.StatusCode >= 500 {
		return Response{}, &retryableError{fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(respBody))}
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("llm: decode response: %w", err)
	}

	out := Response{
		ID:           parsed.ID,
		Model:        parsed.Model,
		FinishReason: mapStopReason(parsed.StopReason),
		LatencyMS:    time.Since(start).Milliseconds(),
		Usage: Usage{
			Prompt:     parsed.Usage.InputTokens,
			Completion: parsed.Usage.OutputTokens,
			Total:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}

	var content strings.Builder
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.Text)
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:       block.ID,
				Type:     "function",
				Function: FunctionCall{Name: block.Name, Arguments: string(block.Input)},
			})
		}
	}
	out.Content = content.String()
	return out, nil
}

// mapStopReason normalizes the provider's stop_reason into the Port's
// closed FinishReason set.
func mapStopReason(reason string) FinishReason {
	switch reason {
	case "tool_use":
		return FinishToolCalls
	case "max_tokens":
		return FinishLength
	case "refusal":
		return FinishContentFilter
	default:
		return FinishStop
	}
}
