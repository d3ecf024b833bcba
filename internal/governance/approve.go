package governance

import (
	"context"
	"fmt"
	"time"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ApprovalAction is one of the five actions the approve-ghost endpoint
// accepts.
type ApprovalAction string

const (
	ActionApprove  ApprovalAction = "approve"
	ActionReject   ApprovalAction = "reject"
	ActionPause    ApprovalAction = "pause"
	ActionActivate ApprovalAction = "activate"
	ActionArchive  ApprovalAction = "archive"
)

// ErrInvalidTransition reports an approval action that is illegal from the
// Ghost's current status.
type ErrInvalidTransition struct {
	From   model.GhostStatus
	Action ApprovalAction
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("governance: action %q not valid from status %q", e.Action, e.From)
}

// ApplyApproval runs the approve state machine against ghost and
// returns the updated Ghost. It does not itself persist anything — callers
// (internal/httpapi) pass the result to Store.UpdateGhost plus, on a
// version bump, Store.AppendGhostVersion, and resolve the matching pending
// approval_request row via Store.ResolveApproval.
//
//	pending_approval --approve--> approved (is_active=true, version+=1, new version row)
//	pending_approval --reject --> archived (is_active=false)
//	any              --archive--> archived (is_active=false)
//	approved|active  --pause  --> paused   (is_active=false)
//	paused|approved  --activate-> active   (is_active=true)
func ApplyApproval(ghost model.Ghost, action ApprovalAction, approvedBy string) (model.Ghost, error) {
	switch action {
	case ActionApprove:
		if ghost.Status != model.GhostPendingApproval {
			return ghost, &ErrInvalidTransition{ghost.Status, action}
		}
		ghost.Status = model.GhostApproved
		ghost.IsActive = true
		ghost.Version++
		ghost.ApprovedBy = approvedBy

	case ActionReject:
		if ghost.Status != model.GhostPendingApproval {
			return ghost, &ErrInvalidTransition{ghost.Status, action}
		}
		ghost.Status = model.GhostArchived
		ghost.IsActive = false

	case ActionArchive:
		ghost.Status = model.GhostArchived
		ghost.IsActive = false

	case ActionPause:
		if ghost.Status != model.GhostApproved && ghost.Status != model.GhostActive {
			return ghost, &ErrInvalidTransition{ghost.Status, action}
		}
		ghost.Status = model.GhostPaused
		ghost.IsActive = false

	case ActionActivate:
		if ghost.Status != model.GhostPaused && ghost.Status != model.GhostApproved {
			return ghost, &ErrInvalidTransition{ghost.Status, action}
		}
		ghost.Status = model.GhostActive
		ghost.IsActive = true

	default:
		return ghost, fmt.Errorf("governance: unknown approval action %q", action)
	}

	ghost.UpdatedAt = time.Now()
	return ghost, nil
}

// RecordApproval applies action to the Ghost fetched from store, persists
// the resulting status/version (plus a new GhostVersion row when the
// version was bumped), and resolves the matching pending approval request
// if one exists. It returns the updated Ghost.
func RecordApproval(ctx context.Context, store Store, orgID, ghostID string, action ApprovalAction, approvedBy, decisionNote string) (model.Ghost, error) {
	ghost, err := store.GetGhost(ctx, orgID, ghostID)
	if err != nil {
		return model.Ghost{}, err
	}

	prevVersion := ghost.Version
	updated, err := ApplyApproval(ghost, action, approvedBy)
	if err != nil {
		return model.Ghost{}, err
	}

	if err := store.UpdateGhost(ctx, updated); err != nil {
		return model.Ghost{}, err
	}

	if updated.Version != prevVersion {
		if err := store.AppendGhostVersion(ctx, model.GhostVersion{
			GhostID:       updated.ID,
			Version:       updated.Version,
			ExecutionPlan: updated.ExecutionPlan,
			Parameters:    updated.Parameters,
			Trigger:       updated.Trigger,
			CreatedBy:     approvedBy,
			CreatedAt:     time.Now(),
		}); err != nil {
			return model.Ghost{}, err
		}
	}

	var resolved model.ApprovalStatus
	switch action {
	case ActionApprove:
		resolved = model.ApprovalApproved
	case ActionReject:
		resolved = model.ApprovalRejected
	default:
		resolved = ""
	}
	if resolved != "" {
		if pending, err := store.GetPendingApproval(ctx, orgID, ghostID); err == nil && pending.ID != "" {
			_ = store.ResolveApproval(ctx, pending.ID, resolved, approvedBy, decisionNote)
		}
	}

	return updated, nil
}
