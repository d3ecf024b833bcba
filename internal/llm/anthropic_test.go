package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnthropicClientCompleteParsesTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicResponse{
			ID:         "msg_1",
			Model:      "claude-sonnet-4-5-20250929",
			StopReason: "end_turn",
			Content:    []anthropicContentBlock{{Type: "text", Text: `{"name":"checkout"}`}},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Complete(context.Background(), SingleTurn("sys", "user"))
	require.NoError(t, err)
	require.Equal(t, `{"name":"checkout"}`, resp.Content)
	require.Equal(t, FinishStop, resp.FinishReason)
	require.Equal(t, "msg_1", resp.ID)
}

func TestAnthropicClientMapsToolUseBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{
			StopReason: "tool_use",
			Content: []anthropicContentBlock{
				{Type: "tool_use", ID: "tu_1", Name: "api_call", Input: json.RawMessage(`{"endpoint":"https://x"}`)},
			},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "go"}},
		Tools:    []ToolDef{{Name: "api_call", Description: "d", Parameters: map[string]any{"type": "object"}}},
	})
	require.NoError(t, err)
	require.Equal(t, FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "api_call", resp.ToolCalls[0].Function.Name)
	require.JSONEq(t, `{"endpoint":"https://x"}`, resp.ToolCalls[0].Function.Arguments)
}

func TestAnthropicClientReportsUsageAndLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var parsed anthropicResponse
		parsed.StopReason = "max_tokens"
		parsed.Content = []anthropicContentBlock{{Type: "text", Text: "truncated"}}
		parsed.Usage.InputTokens = 10
		parsed.Usage.OutputTokens = 5
		json.NewEncoder(w).Encode(parsed)
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Complete(context.Background(), SingleTurn("", "x"))
	require.NoError(t, err)
	require.Equal(t, FinishLength, resp.FinishReason)
	require.Equal(t, 15, resp.Usage.Total)
	require.GreaterOrEqual(t, resp.LatencyMS, int64(0))
}

func TestAnthropicClientRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(500)
			return
		}
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicContentBlock{{Type: "text", Text: "ok"}}})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Complete(context.Background(), SingleTurn("", "x"))
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Content)
	require.Equal(t, int32(2), attempts.Load())
}

func TestAnthropicClientNonRetryableError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), SingleTurn("", "x"))
	require.Error(t, err)
}

func TestAnthropicClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(404)
	}))

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	require.True(t, c.Health(context.Background()))

	srv.Close()
	require.False(t, c.Health(context.Background()))
}
