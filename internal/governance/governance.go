// Package governance defines the storage contracts for the Governance
// Store: Ghosts and their version history, Detected
// Patterns, Executions and their append-only audit log, Approval
// Requests, append-only user feedback, per-tenant org settings, and
// automation policies. This package carries interfaces only — production
// implementations live in internal/store/pg (Postgres via pgx/v5), and an
// in-memory test double lives in internal/governance/memstore.
package governance

import (
	"context"
	"errors"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ErrNotFound is returned (wrapped) by any store lookup that finds no row
// scoped to the given orgID, so internal/httpapi can map it to 404
// without inspecting driver-specific error types.
var ErrNotFound = errors.New("governance: not found")

// GhostStore persists Ghost templates and their immutable version history.
type GhostStore interface {
	GetGhost(ctx context.Context, orgID, ghostID string) (model.Ghost, error)
	CreateGhost(ctx context.Context, g model.Ghost) (model.Ghost, error)
	UpdateGhost(ctx context.Context, g model.Ghost) error
	ListGhosts(ctx context.Context, orgID string, status model.GhostStatus) ([]model.Ghost, error)
	AppendGhostVersion(ctx context.Context, v model.GhostVersion) error
}

// PatternStore persists Detected Patterns, upserted idempotently by the
// clustering pipeline and read back by the pattern-detector endpoint and
// the Ghost promotion flow.
type PatternStore interface {
	UpsertPattern(ctx context.Context, p model.DetectedPattern) error
	ListPatterns(ctx context.Context, orgID string, status model.PatternStatus) ([]model.DetectedPattern, error)
	GetPattern(ctx context.Context, orgID, patternID string) (model.DetectedPattern, error)
}

// ExecutionStore persists Execution run records (not the append-only audit
// log — see ExecutionLogStore for that).
type ExecutionStore interface {
	SaveExecution(ctx context.Context, e model.Execution) error
	GetExecution(ctx context.Context, orgID, executionID string) (model.Execution, error)
	ListExecutions(ctx context.Context, orgID, ghostID string) ([]model.Execution, error)
}

// ExecutionLogStore appends the immutable per-execution audit row.
// Implementations must reject updates and deletes; internal/store/pg enforces this at the database
// level with a rule/trigger rather than relying on callers to behave.
type ExecutionLogStore interface {
	AppendExecutionLog(ctx context.Context, log model.ExecutionLog) error
	ListExecutionLogs(ctx context.Context, orgID, executionID string) ([]model.ExecutionLog, error)
}

// ApprovalStore persists Approval Requests and drives the Ghost approve
// state machine.
type ApprovalStore interface {
	CreateApprovalRequest(ctx context.Context, r model.ApprovalRequest) (model.ApprovalRequest, error)
	GetPendingApproval(ctx context.Context, orgID, ghostID string) (model.ApprovalRequest, error)
	ResolveApproval(ctx context.Context, requestID string, status model.ApprovalStatus, approvedBy, decisionNote string) error
}

// FeedbackStore appends user feedback rows.
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, f model.UserFeedback) error
	ListFeedback(ctx context.Context, orgID, executionID string) ([]model.UserFeedback, error)
}

// OrgSettingsStore persists per-tenant configuration (auto-approve
// threshold, rate limits, LLM provider selection).
type OrgSettingsStore interface {
	GetOrgSettings(ctx context.Context, orgID string) (model.OrgSettings, error)
	UpsertOrgSettings(ctx context.Context, s model.OrgSettings) error
}

// PolicyStore persists tenant-defined automation guardrails evaluated
// before execution and before auto-promoting a pattern into a Ghost.
type PolicyStore interface {
	ListPolicies(ctx context.Context, orgID string) ([]model.AutomationPolicy, error)
	UpsertPolicy(ctx context.Context, p model.AutomationPolicy) error
}

// Store aggregates every governance contract.
type Store interface {
	GhostStore
	PatternStore
	ExecutionStore
	ExecutionLogStore
	ApprovalStore
	FeedbackStore
	OrgSettingsStore
	PolicyStore
}
