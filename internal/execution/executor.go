// Package execution implements the adaptive Execution Engine:
// it plans a Ghost's action DAG with an LLM (or reuses a stored plan),
// executes each node through the closed six-tool set, self-heals a failed
// step by asking the LLM for a one-shot replacement, and returns every
// recorded step for append-only audit logging. Tool dispatch is a registry
// of small, uniformly-shaped handler functions keyed by tool name.
package execution

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghostlabs/ghost-core/internal/browser"
	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
	"github.com/ghostlabs/ghost-core/internal/notify"
)

const tracerName = "github.com/ghostlabs/ghost-core"

// LedgerSink appends the immutable audit row for a finished Execution.
// Defined locally (rather than importing internal/governance) so this
// package has no dependency on the store layer; governance's
// ExecutionLogStore satisfies it directly.
type LedgerSink interface {
	AppendExecutionLog(ctx context.Context, log model.ExecutionLog) error
}

// Engine plans and runs Ghost executions.
type Engine struct {
	llm      llm.Port
	notifier notify.Notifier
	ledger   LedgerSink
	handlers map[model.ToolName]ToolHandler
}

// NewEngine wires an Engine. driver may be nil-backed by
// browser.NewQueueingDriver() when the caller wants the production
// default; ledger and notifier may be nil (nil ledger skips audit
// persistence, nil notifier is upgraded to notify.NoopNotifier).
func NewEngine(port llm.Port, driver browser.Driver, notifier notify.Notifier, ledger LedgerSink, httpClient *http.Client) *Engine {
	if driver == nil {
		driver = browser.NewQueueingDriver()
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Engine{
		llm:      port,
		notifier: notifier,
		ledger:   ledger,
		handlers: map[model.ToolName]ToolHandler{
			model.ToolAPICall:         apiCallHandler(httpClient),
			model.ToolNavigateTo:      browserHandler(driver, model.ToolNavigateTo),
			model.ToolClickElement:    browserHandler(driver, model.ToolClickElement),
			model.ToolInputText:       browserHandler(driver, model.ToolInputText),
			model.ToolExtractData:     browserHandler(driver, model.ToolExtractData),
			model.ToolHumanEscalation: humanEscalationHandler(notifier),
		},
	}
}

// Run executes ghost's plan (stored or freshly planned) and returns the
// finished Execution with every recorded step.
func (e *Engine) Run(ctx context.Context, ghost model.Ghost, triggerLabel string, params map[string]any) model.Execution {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "execution.run",
		trace.WithAttributes(
			attribute.String("ghost.id", ghost.ID),
			attribute.String("org.id", ghost.OrgID),
		))
	defer span.End()

	started := time.Now()
	exec := model.Execution{
		ID:         uuid.NewString(),
		GhostID:    ghost.ID,
		OrgID:      ghost.OrgID,
		Status:     model.ExecutionRunning,
		Parameters: params,
		Trigger:    triggerLabel,
		StartedAt:  started,
	}

	plan := e.Plan(ctx, ghost)

	var steps []model.ExecutionStep
	for _, node := range plan {
		step := e.runNode(ctx, node)
		steps = append(steps, step)

		if step.Status != model.StepFailed {
			continue
		}
		healed := e.selfHeal(ctx, node, step.Error)
		steps = append(steps, healed)
		if healed.Status != model.StepCompleted {
			// Repair failed too: stop, finalize as failed, and still
			// write the audit row below.
			break
		}
	}

	exec.Steps = steps
	exec.StepCount = len(steps)
	completed := time.Now()
	exec.CompletedAt = &completed

	if allStepsTerminal(steps) {
		exec.Status = model.ExecutionCompleted
	} else {
		exec.Status = model.ExecutionFailed
		exec.Error = firstStepError(steps)
	}

	if e.ledger != nil {
		_ = e.ledger.AppendExecutionLog(ctx, buildLog(exec))
	}
	span.SetAttributes(
		attribute.String("execution.status", string(exec.Status)),
		attribute.Int("execution.steps", len(steps)),
	)
	return exec
}

// runNode executes one DAG vertex and returns its recorded step.
func (e *Engine) runNode(ctx context.Context, node model.ExecutionNode) model.ExecutionStep {
	switch node.Type {
	case model.NodeActionType, "":
		if node.Action == nil {
			return model.ExecutionStep{
				NodeID:   node.ID,
				Status:   model.StepFailed,
				Strategy: model.StrategyDirect,
				Error:    "execution: action node missing action payload",
			}
		}
		start := time.Now()
		output, strategy, err := e.dispatch(ctx, node.Action.Tool, node.Action.Params)
		step := model.ExecutionStep{
			NodeID:     node.ID,
			Strategy:   strategy,
			DurationMS: msSince(start),
			Output:     output,
		}
		if err != nil {
			step.Status = model.StepFailed
			step.Strategy = model.StrategyDirect
			step.Error = err.Error()
			return step
		}
		step.Status = model.StepCompleted
		return step

	case model.NodeCondition, model.NodeLoop, model.NodeParallel:
		// Branching/iteration semantics for these vertex kinds are not
		// defined yet. Recording them as skipped keeps the audit trail
		// honest rather than inventing untested control-flow rules.
		return model.ExecutionStep{NodeID: node.ID, Status: model.StepSkipped, Strategy: model.StrategyDirect}

	default:
		return model.ExecutionStep{
			NodeID:   node.ID,
			Status:   model.StepFailed,
			Strategy: model.StrategyDirect,
			Error:    fmt.Sprintf("execution: unknown node type %q", node.Type),
		}
	}
}

// Dispatch executes a single tool call outside of a Ghost plan, exposing
// the engine's tool catalog to external callers (internal/mcpserver)
// without a strategy in the return signature.
func (e *Engine) Dispatch(ctx context.Context, tool model.ToolName, params map[string]any) (any, error) {
	output, _, err := e.dispatch(ctx, tool, params)
	return output, err
}

func (e *Engine) dispatch(ctx context.Context, tool model.ToolName, params map[string]any) (any, model.Strategy, error) {
	handler, ok := e.handlers[tool]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", tool)}, model.StrategyUnknown, nil
	}
	return handler(ctx, params)
}

func allStepsTerminal(steps []model.ExecutionStep) bool {
	if len(steps) == 0 {
		return false
	}
	for _, s := range steps {
		if s.Status != model.StepCompleted && s.Status != model.StepSkipped {
			return false
		}
	}
	return true
}

func firstStepError(steps []model.ExecutionStep) string {
	for _, s := range steps {
		if s.Error != "" {
			return s.Error
		}
	}
	return ""
}

func buildLog(exec model.Execution) model.ExecutionLog {
	strategies := make([]string, 0, len(exec.Steps))
	seen := make(map[string]bool, len(exec.Steps))
	for _, s := range exec.Steps {
		key := string(s.Strategy)
		if !seen[key] {
			seen[key] = true
			strategies = append(strategies, key)
		}
	}

	var durationMS int64
	if exec.CompletedAt != nil {
		durationMS = exec.CompletedAt.Sub(exec.StartedAt).Milliseconds()
	}

	return model.ExecutionLog{
		ID:             uuid.NewString(),
		ExecutionID:    exec.ID,
		GhostID:        exec.GhostID,
		OrgID:          exec.OrgID,
		Status:         string(exec.Status),
		Steps:          exec.Steps,
		DurationMS:     durationMS,
		StrategiesUsed: strategies,
		LoggedAt:       time.Now(),
	}
}

func msSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
