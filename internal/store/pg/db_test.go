package pg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestRequireOrgFailsClosed(t *testing.T) {
	require.ErrorIs(t, requireOrg(""), ErrMissingOrg)
	require.NoError(t, requireOrg("org1"))
}

// The audit point must trip before any SQL runs: a nil-DB store proves the
// guard short-circuits, since reaching the database would panic.
func TestStoresRejectOrgUnscopedCalls(t *testing.T) {
	ctx := context.Background()

	_, err := NewGhostStore(nil).GetGhost(ctx, "", "g1")
	require.ErrorIs(t, err, ErrMissingOrg)

	_, err = NewPatternStore(nil).ListPatterns(ctx, "", "")
	require.ErrorIs(t, err, ErrMissingOrg)

	err = NewEventStore(nil).InsertBatch(ctx, "", model.SecureEventBatch{})
	require.ErrorIs(t, err, ErrMissingOrg)

	err = NewExecutionStore(nil).SaveExecution(ctx, model.Execution{ID: "e1"})
	require.ErrorIs(t, err, ErrMissingOrg)
}
