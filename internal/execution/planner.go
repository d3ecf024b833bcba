package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
)

const plannerSystemPrompt = `You are a workflow execution planner. Given a goal, produce a JSON array of execution nodes, each shaped as:
{"id": string, "type": "action", "action": {"tool": string, "params": object}, "children": [string,...]}
Only use these tools: navigate_to, click_element, input_text, api_call, extract_data, human_escalation.
Prefer api_call over browser-native tools whenever an equivalent API is available.
Include a fallback node id on any step that plausibly fails.
Respond with ONLY the JSON array and no surrounding prose.`

// Plan returns ghost's execution plan: the stored plan if present, else a
// freshly LLM-generated one, else (on any planning failure) a single-step
// escalation plan. Plan never returns an error — a
// planning failure always degrades to the escalation plan instead.
func (e *Engine) Plan(ctx context.Context, ghost model.Ghost) []model.ExecutionNode {
	if len(ghost.ExecutionPlan) > 0 {
		return ghost.ExecutionPlan
	}

	resp, err := e.llm.Complete(ctx, llm.SingleTurn(plannerSystemPrompt, plannerUserPrompt(ghost)))
	if err != nil {
		return escalationFallbackPlan()
	}

	arr := extractFirstJSONArray(resp.Content)
	if arr == "" {
		return escalationFallbackPlan()
	}

	var nodes []model.ExecutionNode
	if err := json.Unmarshal([]byte(arr), &nodes); err != nil || len(nodes) == 0 {
		return escalationFallbackPlan()
	}
	return nodes
}

func plannerUserPrompt(ghost model.Ghost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ghost: %s\n", ghost.Name)
	if ghost.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ghost.Description)
	}
	for _, p := range ghost.Parameters {
		fmt.Fprintf(&b, "Parameter: %s (%s, required=%v)\n", p.Name, p.Type, p.Required)
	}
	return b.String()
}

func escalationFallbackPlan() []model.ExecutionNode {
	return []model.ExecutionNode{{
		ID:   "escalate",
		Type: model.NodeActionType,
		Action: &model.NodeAction{
			Tool:   model.ToolHumanEscalation,
			Params: map[string]any{"reason": "Could not generate execution plan automatically"},
		},
	}}
}

// extractFirstJSONArray returns the first top-level "[...]" span in s,
// tolerating any surrounding prose, or "" if none is found. Mirrors
// internal/clustering's extractFirstJSONObject brace scanner, adapted for
// brackets since an LLM plan is an array of nodes rather than one object.
func extractFirstJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
