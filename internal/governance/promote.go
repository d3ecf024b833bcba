package governance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ApprovalNotifier delivers the approval-requested ping; satisfied by
// internal/notify.Notifier. Defined locally so this package does not
// depend on the notifier implementations.
type ApprovalNotifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// approvalTTL is how long a freshly created approval request stays
// actionable before it expires.
const approvalTTL = 24 * time.Hour

// ErrPatternAlreadyPromoted reports a promotion attempt against a pattern
// that already produced a Ghost. A pattern transitions to approved exactly
// once.
var ErrPatternAlreadyPromoted = fmt.Errorf("governance: pattern already promoted")

// PromotionStore is the slice of Store the promotion flow needs; the full
// governance.Store satisfies it.
type PromotionStore interface {
	GetPattern(ctx context.Context, orgID, patternID string) (model.DetectedPattern, error)
	UpsertPattern(ctx context.Context, p model.DetectedPattern) error
	CreateGhost(ctx context.Context, g model.Ghost) (model.Ghost, error)
	CreateApprovalRequest(ctx context.Context, r model.ApprovalRequest) (model.ApprovalRequest, error)
}

// PromotePattern converts an approved operator decision on a Detected
// Pattern into a pending Ghost: it marks the pattern approved (exactly
// once), creates a pending_approval Ghost carrying the pattern's suggested
// name/description/confidence and SourcePatternID, opens the matching
// approval request with a 24h expiry, and pings the notifier. Every
// producer of a Ghost row — this server flow or a dashboard insert —
// converges here or on the same store contracts, so the
// pattern-transitions-once invariant holds regardless of entry path.
func PromotePattern(ctx context.Context, store PromotionStore, notifier ApprovalNotifier, orgID, patternID, requestedBy string) (model.Ghost, error) {
	pattern, err := store.GetPattern(ctx, orgID, patternID)
	if err != nil {
		return model.Ghost{}, err
	}
	if pattern.Status == model.PatternApproved {
		return model.Ghost{}, ErrPatternAlreadyPromoted
	}
	if pattern.Status == model.PatternDismissed {
		return model.Ghost{}, fmt.Errorf("governance: cannot promote dismissed pattern %q", patternID)
	}

	pattern.Status = model.PatternApproved
	if err := store.UpsertPattern(ctx, pattern); err != nil {
		return model.Ghost{}, err
	}

	name := pattern.SuggestedName
	if name == "" {
		name = "Detected workflow " + pattern.ID
	}
	now := time.Now()
	ghost, err := store.CreateGhost(ctx, model.Ghost{
		ID:              uuid.NewString(),
		OrgID:           orgID,
		Name:            name,
		Description:     pattern.SuggestedDescription,
		Version:         1,
		Status:          model.GhostPendingApproval,
		Trigger:         model.Trigger{Type: model.TriggerTypeEvent},
		Confidence:      pattern.Confidence,
		SourcePatternID: pattern.ID,
		CreatedBy:       requestedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return model.Ghost{}, err
	}

	if _, err := store.CreateApprovalRequest(ctx, model.ApprovalRequest{
		ID:          uuid.NewString(),
		GhostID:     ghost.ID,
		OrgID:       orgID,
		RequestedBy: requestedBy,
		Status:      model.ApprovalPending,
		Reason:      "pattern promoted to ghost",
		ExpiresAt:   now.Add(approvalTTL),
		CreatedAt:   now,
	}); err != nil {
		return model.Ghost{}, err
	}

	if notifier != nil {
		_ = notifier.Notify(ctx, model.Notification{
			OrgID:   orgID,
			Kind:    "approval_requested",
			Subject: "New Ghost awaiting approval: " + ghost.Name,
			Body:    ghost.Description,
		})
	}

	return ghost, nil
}
