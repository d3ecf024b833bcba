package model

import (
	"encoding/json"
	"time"
)

// ExecutionStatus is the lifecycle state of an Execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// StepStatus is the lifecycle state of one Execution Step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Strategy identifies how a step's tool call was ultimately satisfied.
type Strategy string

const (
	StrategySemantic   Strategy = "semantic"
	StrategyStructural Strategy = "structural"
	StrategyVisual     Strategy = "visual"
	StrategyCoordinate Strategy = "coordinate"
	StrategyAPI        Strategy = "api"
	StrategyHuman      Strategy = "human"
	StrategyDirect     Strategy = "direct"
	StrategyUnknown    Strategy = "unknown"
)

// SelfHealedStrategy prefixes a base strategy to record that it was reached
// via the self-heal repair path.
func SelfHealedStrategy(base Strategy) Strategy {
	return Strategy("self_healed:" + string(base))
}

// ExecutionStep is one recorded attempt within an Execution.
type ExecutionStep struct {
	NodeID     string     `json:"nodeId"`
	Status     StepStatus `json:"status"`
	Strategy   Strategy   `json:"strategy"`
	DurationMS int64      `json:"durationMs"`
	Output     any        `json:"output,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Execution is a single run of a Ghost's plan.
type Execution struct {
	ID          string          `json:"id"`
	GhostID     string          `json:"ghostId"`
	OrgID       string          `json:"orgId"`
	Status      ExecutionStatus `json:"status"`
	Parameters  map[string]any  `json:"parameters,omitempty"`
	Trigger     string          `json:"trigger,omitempty"`
	StepCount   int             `json:"stepCount"`
	Steps       []ExecutionStep `json:"steps"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ExecutionLog is the immutable audit row written after an Execution finalizes.
type ExecutionLog struct {
	ID              string    `json:"id"`
	ExecutionID     string    `json:"executionId"`
	GhostID         string    `json:"ghostId"`
	OrgID           string    `json:"orgId"`
	Status          string    `json:"status"`
	Steps           []ExecutionStep `json:"steps"`
	DurationMS      int64     `json:"durationMs"`
	StrategiesUsed  []string  `json:"strategiesUsed"`
	LoggedAt        time.Time `json:"loggedAt"`
}

// ApprovalStatus is the lifecycle state of an Approval Request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalExpired  ApprovalStatus = "expired"
)

// ApprovalRequest gates a pending Ghost.
type ApprovalRequest struct {
	ID           string         `json:"id"`
	GhostID      string         `json:"ghostId"`
	ExecutionID  string         `json:"executionId,omitempty"`
	OrgID        string         `json:"orgId"`
	RequestedBy  string         `json:"requestedBy"`
	ApprovedBy   string         `json:"approvedBy,omitempty"`
	Status       ApprovalStatus `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	DecisionNote string         `json:"decisionNote,omitempty"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	ResolvedAt   *time.Time     `json:"resolvedAt,omitempty"`
}

// UserFeedback is an append-only feedback row.
type UserFeedback struct {
	ID                string         `json:"id"`
	ExecutionID       string         `json:"executionId"`
	GhostID           string         `json:"ghostId"`
	OrgID             string         `json:"orgId"`
	UserID            string         `json:"userId"`
	SatisfactionScore *int           `json:"satisfactionScore,omitempty"`
	CorrectedActions  map[string]any `json:"correctedActions,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// OrgSettings is per-tenant configuration.
type OrgSettings struct {
	OrgID                    string         `json:"orgId"`
	Settings                 map[string]any `json:"settings,omitempty"`
	AutoApproveThreshold     float64        `json:"autoApproveThreshold"`
	MaxExecutionsPerMinute   int            `json:"maxExecutionsPerMinute"`
	LLMProvider              string         `json:"llmProvider"`
	LLMModel                 string         `json:"llmModel"`
	RequireApprovalAboveValue *float64      `json:"requireApprovalAboveValue,omitempty"`
}

// PolicyAction enumerates automation policy outcomes.
type PolicyAction string

const (
	PolicyRequireApproval PolicyAction = "require_approval"
	PolicyBlock           PolicyAction = "block"
	PolicyNotify          PolicyAction = "notify"
	PolicyAllow           PolicyAction = "allow"
)

// AutomationPolicy is a tenant-defined guardrail evaluated before execution.
type AutomationPolicy struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"orgId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	Action      PolicyAction    `json:"action"`
	IsActive    bool            `json:"isActive"`
}

// Notification is the payload delivered to internal/notify backends.
type Notification struct {
	OrgID   string `json:"orgId"`
	Kind    string `json:"kind"` // "approval_requested", "human_escalation"
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Link    string `json:"link,omitempty"`
}
