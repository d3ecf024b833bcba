package model

import "time"

// PatternStatus is the lifecycle state of a Detected Pattern.
type PatternStatus string

const (
	PatternNeedsReview   PatternStatus = "needs_review"
	PatternAutoSuggested PatternStatus = "auto_suggested"
	PatternApproved      PatternStatus = "approved"
	PatternDismissed     PatternStatus = "dismissed"
)

// DetectedPattern is a clustered, confidence-scored candidate workflow.
type DetectedPattern struct {
	ID                   string        `json:"id"`
	OrgID                string        `json:"orgId"`
	IntentSequence       []IntentClass `json:"intentSequence"`
	StructuralHashes     []string      `json:"structuralHashes"`
	Occurrences          int           `json:"occurrences"`
	Confidence           float64       `json:"confidence"`
	SuggestedName        string        `json:"suggestedName,omitempty"`
	SuggestedDescription string        `json:"suggestedDescription,omitempty"`
	FirstSeen            time.Time     `json:"firstSeen"`
	LastSeen             time.Time     `json:"lastSeen"`
	Status               PatternStatus `json:"status"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// EventSequence is a sliding window of secure events reduced to a single
// embedding, used as the clustering unit.
type EventSequence struct {
	SessionFingerprint string
	Events             []SecureEvent
	Embedding          []float64
	Timestamp          time.Time // window's first event's timestamp bucket, parsed
}
