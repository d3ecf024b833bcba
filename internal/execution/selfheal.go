package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
)

const repairSystemPrompt = `You repair a single failed execution step. Given the failed node's JSON and the error it raised, respond with ONLY a JSON object shaped as {"tool": string, "params": object} naming a substitute tool call from {navigate_to, click_element, input_text, api_call, extract_data, human_escalation} that should be tried instead. If no repair is plausible, respond with a human_escalation tool call explaining why.`

type repairNode struct {
	Tool   model.ToolName `json:"tool"`
	Params map[string]any `json:"params"`
}

// selfHeal asks the LLM for a one-shot substitute for failedNode and
// executes it, recording the attempt with a "self_healed:" strategy
// prefix. It always returns a step — even a self-heal that
// never reaches the LLM is recorded as a failed step — because the audit
// row must always reflect what was attempted.
func (e *Engine) selfHeal(ctx context.Context, failedNode model.ExecutionNode, failErr string) model.ExecutionStep {
	start := time.Now()
	stepID := "self_healed:" + failedNode.ID

	nodeJSON, err := json.Marshal(failedNode)
	if err != nil {
		return model.ExecutionStep{
			NodeID:     stepID,
			Status:     model.StepFailed,
			Strategy:   model.SelfHealedStrategy(model.StrategyUnknown),
			DurationMS: msSince(start),
			Error:      fmt.Sprintf("self-heal: marshal failed node: %v", err),
		}
	}

	resp, err := e.llm.Complete(ctx, llm.SingleTurn(repairSystemPrompt, repairUserPrompt(string(nodeJSON), failErr)))
	if err != nil {
		return model.ExecutionStep{
			NodeID:     stepID,
			Status:     model.StepFailed,
			Strategy:   model.SelfHealedStrategy(model.StrategyUnknown),
			DurationMS: msSince(start),
			Error:      fmt.Sprintf("self-heal: llm repair call failed: %v", err),
		}
	}

	obj := extractFirstJSONObjectExec(resp.Content)
	var rn repairNode
	if obj == "" || json.Unmarshal([]byte(obj), &rn) != nil || rn.Tool == "" {
		return model.ExecutionStep{
			NodeID:     stepID,
			Status:     model.StepFailed,
			Strategy:   model.SelfHealedStrategy(model.StrategyUnknown),
			DurationMS: msSince(start),
			Error:      "self-heal: could not parse repair response",
		}
	}

	output, strategy, execErr := e.dispatch(ctx, rn.Tool, rn.Params)
	step := model.ExecutionStep{
		NodeID:     stepID,
		Strategy:   model.SelfHealedStrategy(strategy),
		DurationMS: msSince(start),
		Output:     output,
	}
	if execErr != nil {
		step.Status = model.StepFailed
		step.Error = execErr.Error()
		return step
	}
	step.Status = model.StepCompleted
	return step
}

func repairUserPrompt(nodeJSON, failErr string) string {
	var b strings.Builder
	b.WriteString("Failed node:\n")
	b.WriteString(nodeJSON)
	b.WriteString("\nError:\n")
	b.WriteString(failErr)
	return b.String()
}

// extractFirstJSONObjectExec returns the first top-level "{...}" span in s,
// tolerating surrounding prose. A small, self-contained twin of
// internal/clustering's extractFirstJSONObject — kept local rather than
// exported cross-package to avoid a needless inter-package dependency for
// one tiny scanner.
func extractFirstJSONObjectExec(s string) string {
	start := strings.IndexByte(s, '{')
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
