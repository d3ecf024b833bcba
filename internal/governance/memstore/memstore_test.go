package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestCreateAndGetGhostRoundTrips(t *testing.T) {
	s := New()
	created, err := s.CreateGhost(context.Background(), model.Ghost{OrgID: "org1", Name: "refund-flow"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, 1, created.Version)

	got, err := s.GetGhost(context.Background(), "org1", created.ID)
	require.NoError(t, err)
	require.Equal(t, "refund-flow", got.Name)
}

func TestGetGhostRejectsCrossTenantLookup(t *testing.T) {
	s := New()
	created, _ := s.CreateGhost(context.Background(), model.Ghost{OrgID: "org1", Name: "x"})
	_, err := s.GetGhost(context.Background(), "org2", created.ID)
	require.Error(t, err)
}

func TestUpsertPatternThenListFiltersByStatus(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertPattern(context.Background(), model.DetectedPattern{OrgID: "org1", Status: model.PatternNeedsReview}))
	require.NoError(t, s.UpsertPattern(context.Background(), model.DetectedPattern{OrgID: "org1", Status: model.PatternApproved}))

	needsReview, err := s.ListPatterns(context.Background(), "org1", model.PatternNeedsReview)
	require.NoError(t, err)
	require.Len(t, needsReview, 1)
}

func TestAppendExecutionLogIsNeverMutatedByListExecutionLogs(t *testing.T) {
	s := New()
	require.NoError(t, s.AppendExecutionLog(context.Background(), model.ExecutionLog{OrgID: "org1", ExecutionID: "e1", Status: "completed"}))
	logs, err := s.ListExecutionLogs(context.Background(), "org1", "e1")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	logs[0].Status = "tampered"
	again, _ := s.ListExecutionLogs(context.Background(), "org1", "e1")
	require.Equal(t, "completed", again[0].Status)
}

func TestGetPendingApprovalReturnsZeroValueWhenNoneExists(t *testing.T) {
	s := New()
	r, err := s.GetPendingApproval(context.Background(), "org1", "ghost1")
	require.NoError(t, err)
	require.Empty(t, r.ID)
}

func TestResolveApprovalUpdatesStatusAndResolvedAt(t *testing.T) {
	s := New()
	created, err := s.CreateApprovalRequest(context.Background(), model.ApprovalRequest{GhostID: "g1", OrgID: "org1", RequestedBy: "alice"})
	require.NoError(t, err)

	require.NoError(t, s.ResolveApproval(context.Background(), created.ID, model.ApprovalApproved, "bob", "lgtm"))

	pending, _ := s.GetPendingApproval(context.Background(), "org1", "g1")
	require.Empty(t, pending.ID)
}

func TestGetOrgSettingsReturnsDefaultsWhenUnset(t *testing.T) {
	s := New()
	o, err := s.GetOrgSettings(context.Background(), "org1")
	require.NoError(t, err)
	require.Equal(t, 0.95, o.AutoApproveThreshold)
	require.Equal(t, 10, o.MaxExecutionsPerMinute)
}

func TestRecentEventsReturnsNewestFirstScopedToOrg(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertBatch(context.Background(), "org1", model.SecureEventBatch{
		Events: []model.SecureEvent{{OrgID: "org1", SequenceNumber: 1}, {OrgID: "org1", SequenceNumber: 3}},
	}))
	require.NoError(t, s.InsertBatch(context.Background(), "org2", model.SecureEventBatch{
		Events: []model.SecureEvent{{OrgID: "org2", SequenceNumber: 2}},
	}))

	events, err := s.RecentEvents(context.Background(), "org1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.EqualValues(t, 3, events[0].SequenceNumber)
	require.EqualValues(t, 1, events[1].SequenceNumber)
}
