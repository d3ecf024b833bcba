package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ghostlabs/ghost-core/internal/model"
	"github.com/ghostlabs/ghost-core/internal/notify"
)

// ToolHandler executes one tool call and reports which strategy satisfied
// it alongside the result.
type ToolHandler func(ctx context.Context, params map[string]any) (output any, strategy model.Strategy, err error)

// apiCallHandler performs the HTTP request described by params and reports
// the parsed response. Only a transport-level
// failure (the request never completing) is treated as a step error; any
// HTTP status, including 4xx/5xx, is returned as a successful result —
// api_call's contract is purely {status, headers, body}.
func apiCallHandler(client *http.Client) ToolHandler {
	return func(ctx context.Context, params map[string]any) (any, model.Strategy, error) {
		endpoint, _ := params["endpoint"].(string)
		if endpoint == "" {
			return nil, model.StrategyAPI, fmt.Errorf("api_call: missing params.endpoint")
		}
		method, _ := params["method"].(string)
		if method == "" {
			method = http.MethodGet
		}

		var bodyReader io.Reader
		if b, ok := params["body"]; ok && b != nil {
			raw, err := json.Marshal(b)
			if err != nil {
				return nil, model.StrategyAPI, fmt.Errorf("api_call: marshal body: %w", err)
			}
			bodyReader = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return nil, model.StrategyAPI, fmt.Errorf("api_call: build request: %w", err)
		}
		if headers, ok := params["headers"].(map[string]any); ok {
			for k, v := range headers {
				if s, ok := v.(string); ok {
					req.Header.Set(k, s)
				}
			}
		}
		if bodyReader != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, model.StrategyAPI, fmt.Errorf("api_call: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, model.StrategyAPI, fmt.Errorf("api_call: read response: %w", err)
		}

		var parsedBody any
		if len(raw) == 0 {
			parsedBody = nil
		} else if jsonErr := json.Unmarshal(raw, &parsedBody); jsonErr != nil {
			parsedBody = string(raw)
		}

		headerMap := make(map[string]string, len(resp.Header))
		for k := range resp.Header {
			headerMap[k] = resp.Header.Get(k)
		}

		return map[string]any{
			"status":  resp.StatusCode,
			"headers": headerMap,
			"body":    parsedBody,
		}, model.StrategyAPI, nil
	}
}

// humanEscalationHandler notifies a human and records the escalation as
// the step's output. Notifier
// failures never fail the step — the escalation itself is the point, and a
// delivery hiccup shouldn't turn a recorded escalation into a failed one.
func humanEscalationHandler(notifier notify.Notifier) ToolHandler {
	return func(ctx context.Context, params map[string]any) (any, model.Strategy, error) {
		reason, _ := params["reason"].(string)
		_ = notifier.Notify(ctx, model.Notification{
			Kind:    "human_escalation",
			Subject: "Ghost execution escalated to a human",
			Body:    reason,
		})
		return map[string]any{
			"escalated": true,
			"reason":    reason,
			"context":   params["context"],
		}, model.StrategyHuman, nil
	}
}
