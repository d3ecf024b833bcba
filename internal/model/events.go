package model

import "time"

// EventType enumerates the raw event sources the capture surface produces.
type EventType string

const (
	EventDOMMutation EventType = "dom_mut"
	EventUserInt     EventType = "user_int"
	EventNetwork     EventType = "network"
	EventError       EventType = "error"
)

// IntentClass is one of the twelve closed intent labels.
type IntentClass string

const (
	IntentDataEntry           IntentClass = "data_entry"
	IntentNavigation          IntentClass = "navigation"
	IntentCommunication       IntentClass = "communication"
	IntentResearch            IntentClass = "research"
	IntentApproval            IntentClass = "approval"
	IntentFileOperation       IntentClass = "file_operation"
	IntentAuthentication      IntentClass = "authentication"
	IntentConfiguration       IntentClass = "configuration"
	IntentDataExtraction      IntentClass = "data_extraction"
	IntentWorkflowTransition  IntentClass = "workflow_transition"
	IntentErrorHandling       IntentClass = "error_handling"
	IntentUnknown             IntentClass = "unknown"
)

// RawEventContext carries the ambient browsing context for a raw event.
type RawEventContext struct {
	URL       string
	Viewport  Viewport
	UserAgent string
	TabID     string
}

// UserIntPayload is the payload shape for EventUserInt raw events.
type UserIntPayload struct {
	Action      string // input, paste, navigate, click, select, copy, scroll, focus
	Element     ElementSnapshot
	Value       string // raw text value, e.g. input content; scrubbed downstream
	TargetIsA   bool   // target is an <a> element
	InsideForm  bool
	IsCheckbox  bool
	IsRadio     bool
}

// DOMMutationPayload is the payload shape for EventDOMMutation raw events.
type DOMMutationPayload struct {
	AddedNodes    int
	RemovedNodes  int
	TargetTag     string
	TargetFormID  string
	IsFormControl bool
}

// NetworkPayload is the payload shape for EventNetwork raw events.
type NetworkPayload struct {
	Method  string
	URL     string
	Status  int
	Message string // request/response body fragment, scrubbed downstream
}

// ErrorPayload is the payload shape for EventError raw events.
type ErrorPayload struct {
	Message string
	Stack   string
}

// RawEvent is the device-only, never-transmitted event record.
// It is owned by the Privacy Pipeline for the duration of exactly one
// process call and is destroyed afterward.
type RawEvent struct {
	Timestamp int64 // monotonic ms
	SessionID string
	EventType EventType
	Payload   any // one of *UserIntPayload, *DOMMutationPayload, *NetworkPayload, *ErrorPayload
	Context   RawEventContext
}

// SecureEvent is the boundary record that crosses onto the wire.
type SecureEvent struct {
	SessionFingerprint string      `json:"sessionFingerprint"`
	TimestampBucket    string      `json:"timestampBucket"` // ISO8601, 5-min granularity
	IntentVector       []float64   `json:"intentVector"`    // 128 floats
	StructuralHash     string      `json:"structuralHash"`  // 8-hex FNV-1a
	OrgID              string      `json:"orgId"`
	EventType          EventType   `json:"eventType"`
	IntentLabel        IntentClass `json:"intentLabel"`
	IntentConfidence   float64     `json:"intentConfidence"`
	ElementSignature   string      `json:"elementSignature,omitempty"`
	SequenceNumber     int64       `json:"sequenceNumber"`

	// Set by the ingestion boundary, not the pipeline.
	DeviceFingerprint string    `json:"deviceFingerprint,omitempty"`
	BatchID           string    `json:"batchId,omitempty"`
	IngestedAt        time.Time `json:"ingestedAt,omitempty"`
	ID                string    `json:"id,omitempty"`
}

// SecureEventBatch is the wire envelope the Transmitter produces and the
// Ingestion Service accepts.
type SecureEventBatch struct {
	Events            []SecureEvent `json:"events"`
	DeviceFingerprint string        `json:"deviceFingerprint"`
	BatchID           string        `json:"batchId"`
	SentAt            string        `json:"sentAt"` // ISO8601
}
