package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestPromotePatternRejectsMissingArgs(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/promote-pattern", map[string]any{"orgId": "org1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_PATTERN", decodeEnvelope(t, rec).Error.Code)
}

func TestPromotePatternNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/promote-pattern", map[string]any{"orgId": "org1", "patternId": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "PATTERN_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}

func TestPromotePatternCreatesPendingGhostOnce(t *testing.T) {
	srv, store := newTestServer(t)
	now := time.Now()
	require.NoError(t, store.UpsertPattern(context.Background(), model.DetectedPattern{
		ID:            "p1",
		OrgID:         "org1",
		Status:        model.PatternAutoSuggested,
		SuggestedName: "Lead Capture Submission",
		Occurrences:   3,
		Confidence:    0.88,
		FirstSeen:     now,
		LastSeen:      now,
	}))

	rec := doJSON(t, srv, http.MethodPost, "/promote-pattern", map[string]any{
		"orgId": "org1", "patternId": "p1", "requestedBy": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec).Data.(map[string]any)
	ghostID := data["ghostId"].(string)
	require.Equal(t, string(model.GhostPendingApproval), data["status"].(string))

	ghost, err := store.GetGhost(context.Background(), "org1", ghostID)
	require.NoError(t, err)
	require.Equal(t, "p1", ghost.SourcePatternID)

	pending, err := store.GetPendingApproval(context.Background(), "org1", ghostID)
	require.NoError(t, err)
	require.Equal(t, model.ApprovalPending, pending.Status)

	// A pattern is promoted exactly once.
	second := doJSON(t, srv, http.MethodPost, "/promote-pattern", map[string]any{
		"orgId": "org1", "patternId": "p1",
	})
	require.Equal(t, http.StatusConflict, second.Code)
	require.Equal(t, "PATTERN_ALREADY_PROMOTED", decodeEnvelope(t, second).Error.Code)
}
