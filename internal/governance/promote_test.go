package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

type fakePromotionStore struct {
	pattern   model.DetectedPattern
	upserted  []model.DetectedPattern
	ghosts    []model.Ghost
	approvals []model.ApprovalRequest
}

func (f *fakePromotionStore) GetPattern(_ context.Context, _, _ string) (model.DetectedPattern, error) {
	return f.pattern, nil
}

func (f *fakePromotionStore) UpsertPattern(_ context.Context, p model.DetectedPattern) error {
	f.upserted = append(f.upserted, p)
	f.pattern = p
	return nil
}

func (f *fakePromotionStore) CreateGhost(_ context.Context, g model.Ghost) (model.Ghost, error) {
	f.ghosts = append(f.ghosts, g)
	return g, nil
}

func (f *fakePromotionStore) CreateApprovalRequest(_ context.Context, r model.ApprovalRequest) (model.ApprovalRequest, error) {
	f.approvals = append(f.approvals, r)
	return r, nil
}

type recordingNotifier struct{ sent []model.Notification }

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func TestPromotePatternCreatesPendingGhostAndApproval(t *testing.T) {
	store := &fakePromotionStore{pattern: model.DetectedPattern{
		ID:                   "p1",
		OrgID:                "org1",
		Status:               model.PatternAutoSuggested,
		SuggestedName:        "Weekly Invoice Approval",
		SuggestedDescription: "Approves the weekly invoice batch",
		Confidence:           0.88,
	}}
	notifier := &recordingNotifier{}

	ghost, err := PromotePattern(context.Background(), store, notifier, "org1", "p1", "alice")
	require.NoError(t, err)

	require.Equal(t, model.GhostPendingApproval, ghost.Status)
	require.Equal(t, 1, ghost.Version)
	require.Equal(t, "Weekly Invoice Approval", ghost.Name)
	require.Equal(t, "p1", ghost.SourcePatternID)
	require.False(t, ghost.IsActive)

	require.Len(t, store.upserted, 1)
	require.Equal(t, model.PatternApproved, store.upserted[0].Status)

	require.Len(t, store.approvals, 1)
	require.Equal(t, ghost.ID, store.approvals[0].GhostID)
	require.Equal(t, model.ApprovalPending, store.approvals[0].Status)
	require.True(t, store.approvals[0].ExpiresAt.Sub(store.approvals[0].CreatedAt) == approvalTTL)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "approval_requested", notifier.sent[0].Kind)
}

func TestPromotePatternRejectsSecondPromotion(t *testing.T) {
	store := &fakePromotionStore{pattern: model.DetectedPattern{
		ID: "p1", OrgID: "org1", Status: model.PatternNeedsReview, SuggestedName: "X",
	}}

	_, err := PromotePattern(context.Background(), store, nil, "org1", "p1", "alice")
	require.NoError(t, err)

	_, err = PromotePattern(context.Background(), store, nil, "org1", "p1", "alice")
	require.ErrorIs(t, err, ErrPatternAlreadyPromoted)
	require.Len(t, store.ghosts, 1)
}

func TestPromotePatternRejectsDismissed(t *testing.T) {
	store := &fakePromotionStore{pattern: model.DetectedPattern{
		ID: "p1", OrgID: "org1", Status: model.PatternDismissed,
	}}
	_, err := PromotePattern(context.Background(), store, nil, "org1", "p1", "alice")
	require.Error(t, err)
	require.Empty(t, store.ghosts)
}
