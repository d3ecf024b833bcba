package model

import (
	"encoding/json"
	"time"
)

// GhostStatus is the lifecycle state of a Ghost Template.
type GhostStatus string

const (
	GhostPendingApproval GhostStatus = "pending_approval"
	GhostApproved        GhostStatus = "approved"
	GhostActive          GhostStatus = "active"
	GhostPaused          GhostStatus = "paused"
	GhostArchived        GhostStatus = "archived"
)

// TriggerType enumerates how a Ghost may be invoked.
type TriggerType string

const (
	TriggerTypeEvent    TriggerType = "event"
	TriggerTypeSchedule TriggerType = "schedule"
	TriggerTypeAPI      TriggerType = "api"
)

// Trigger is a tagged variant keyed by Type. Schedule triggers carry a cron
// expression evaluated by internal/trigger; event/api triggers carry an
// opaque condition evaluated by an injected ConditionEvaluator.
type Trigger struct {
	Type      TriggerType     `json:"type"`
	Condition json.RawMessage `json:"condition,omitempty"`
	Cron      string          `json:"cron,omitempty"` // only meaningful when Type == TriggerTypeSchedule
}

// ParamType enumerates the allowed Ghost parameter types.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
)

// ParameterSpec describes one named, typed Ghost parameter.
type ParameterSpec struct {
	Name         string    `json:"name"`
	Type         ParamType `json:"type"`
	Required     bool      `json:"required"`
	DefaultValue any       `json:"defaultValue,omitempty"`
}

// NodeType enumerates Execution Node kinds.
type NodeType string

const (
	NodeActionType NodeType = "action"
	NodeCondition  NodeType = "condition"
	NodeLoop       NodeType = "loop"
	NodeParallel   NodeType = "parallel"
)

// ToolName enumerates the closed tool set the Execution Engine may invoke.
type ToolName string

const (
	ToolNavigateTo      ToolName = "navigate_to"
	ToolClickElement    ToolName = "click_element"
	ToolInputText       ToolName = "input_text"
	ToolAPICall         ToolName = "api_call"
	ToolExtractData     ToolName = "extract_data"
	ToolHumanEscalation ToolName = "human_escalation"
)

// NodeAction is the action payload of an action-type Execution Node.
type NodeAction struct {
	Tool   ToolName       `json:"tool"`
	Params map[string]any `json:"params"`
}

// ExecutionNode is one DAG vertex of a Ghost's execution plan.
type ExecutionNode struct {
	ID        string          `json:"id"`
	Type      NodeType        `json:"type"`
	Action    *NodeAction     `json:"action,omitempty"`
	Condition json.RawMessage `json:"condition,omitempty"`
	Children  []string        `json:"children,omitempty"`
	Fallback  string          `json:"fallback,omitempty"`
	TimeoutMS int             `json:"timeout,omitempty"`
}

// UsageStats tracks aggregate execution counters for a Ghost.
type UsageStats struct {
	TotalRuns      int       `json:"totalRuns"`
	SuccessfulRuns int       `json:"successfulRuns"`
	FailedRuns     int       `json:"failedRuns"`
	LastRunAt      time.Time `json:"lastRunAt,omitempty"`
}

// Ghost is an approved, parameterized workflow template.
type Ghost struct {
	ID              string          `json:"id"`
	OrgID           string          `json:"orgId"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Version         int             `json:"version"`
	Status          GhostStatus     `json:"status"`
	Trigger         Trigger         `json:"trigger"`
	Parameters      []ParameterSpec `json:"parameters"`
	ExecutionPlan   []ExecutionNode `json:"executionPlan"`
	Confidence      float64         `json:"confidence,omitempty"`
	SourcePatternID string          `json:"sourcePatternId,omitempty"`
	IsActive        bool            `json:"isActive"`
	UsageStats      UsageStats      `json:"usageStats"`
	CreatedBy       string          `json:"createdBy,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// GhostVersion is an immutable version row appended on every approval.
type GhostVersion struct {
	ID                string          `json:"id"`
	GhostID           string          `json:"ghostId"`
	Version           int             `json:"version"`
	ExecutionPlan     []ExecutionNode `json:"executionPlan"`
	Parameters        []ParameterSpec `json:"parameters"`
	Trigger           Trigger         `json:"trigger"`
	ChangeDescription string          `json:"changeDescription,omitempty"`
	CreatedBy         string          `json:"createdBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}
