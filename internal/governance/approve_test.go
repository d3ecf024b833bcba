package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestApplyApprovalPromotesVersionOnApprove(t *testing.T) {
	ghost := model.Ghost{ID: "g1", Status: model.GhostPendingApproval, Version: 1}

	updated, err := ApplyApproval(ghost, ActionApprove, "alice")
	require.NoError(t, err)
	require.Equal(t, model.GhostApproved, updated.Status)
	require.True(t, updated.IsActive)
	require.Equal(t, 2, updated.Version)
	require.Equal(t, "alice", updated.ApprovedBy)
}

func TestApplyApprovalRejectsInvalidTransitions(t *testing.T) {
	ghost := model.Ghost{ID: "g1", Status: model.GhostArchived, Version: 1}

	_, err := ApplyApproval(ghost, ActionApprove, "alice")
	require.Error(t, err)
	var target *ErrInvalidTransition
	require.ErrorAs(t, err, &target)
}

func TestApplyApprovalArchiveAlwaysAllowed(t *testing.T) {
	for _, from := range []model.GhostStatus{model.GhostPendingApproval, model.GhostApproved, model.GhostActive, model.GhostPaused} {
		ghost := model.Ghost{ID: "g1", Status: from}
		updated, err := ApplyApproval(ghost, ActionArchive, "alice")
		require.NoError(t, err)
		require.Equal(t, model.GhostArchived, updated.Status)
		require.False(t, updated.IsActive)
	}
}

func TestApplyApprovalPauseAndActivateCycle(t *testing.T) {
	ghost := model.Ghost{ID: "g1", Status: model.GhostActive}
	paused, err := ApplyApproval(ghost, ActionPause, "")
	require.NoError(t, err)
	require.Equal(t, model.GhostPaused, paused.Status)
	require.False(t, paused.IsActive)

	active, err := ApplyApproval(paused, ActionActivate, "")
	require.NoError(t, err)
	require.Equal(t, model.GhostActive, active.Status)
	require.True(t, active.IsActive)
}

type fakeGovernanceStore struct {
	Store
	ghost    model.Ghost
	versions []model.GhostVersion
	pending  model.ApprovalRequest
	resolved []string
}

func (f *fakeGovernanceStore) GetGhost(_ context.Context, _, _ string) (model.Ghost, error) {
	return f.ghost, nil
}
func (f *fakeGovernanceStore) UpdateGhost(_ context.Context, g model.Ghost) error {
	f.ghost = g
	return nil
}
func (f *fakeGovernanceStore) AppendGhostVersion(_ context.Context, v model.GhostVersion) error {
	f.versions = append(f.versions, v)
	return nil
}
func (f *fakeGovernanceStore) GetPendingApproval(_ context.Context, _, _ string) (model.ApprovalRequest, error) {
	return f.pending, nil
}
func (f *fakeGovernanceStore) ResolveApproval(_ context.Context, requestID string, status model.ApprovalStatus, _, _ string) error {
	f.resolved = append(f.resolved, requestID+":"+string(status))
	return nil
}

func TestRecordApprovalAppendsVersionAndResolvesPendingRequest(t *testing.T) {
	store := &fakeGovernanceStore{
		ghost:   model.Ghost{ID: "g1", OrgID: "org1", Status: model.GhostPendingApproval, Version: 1},
		pending: model.ApprovalRequest{ID: "req1", GhostID: "g1", Status: model.ApprovalPending},
	}

	updated, err := RecordApproval(context.Background(), store, "org1", "g1", ActionApprove, "alice", "looks good")
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)
	require.Len(t, store.versions, 1)
	require.Equal(t, 2, store.versions[0].Version)
	require.Equal(t, []string{"req1:approved"}, store.resolved)
}

func TestRecordApprovalSkipsVersionRowWhenVersionUnchanged(t *testing.T) {
	store := &fakeGovernanceStore{
		ghost: model.Ghost{ID: "g1", OrgID: "org1", Status: model.GhostActive, Version: 3},
	}

	_, err := RecordApproval(context.Background(), store, "org1", "g1", ActionPause, "", "")
	require.NoError(t, err)
	require.Empty(t, store.versions)
}
