package pg

import (
	"database/sql"
	"fmt"

	"github.com/ghostlabs/ghost-core/internal/governance"
)

// Stores aggregates every governance-contract implementation backed by a
// single Postgres connection pool.
type Stores struct {
	*GhostStore
	*PatternStore
	*ExecutionStore
	*ExecutionLogStore
	*ApprovalStore
	*FeedbackStore
	*OrgSettingsStore
	*PolicyStore
	Events *EventStore

	db *sql.DB
}

var _ governance.Store = (*Stores)(nil)

// NewStores opens dsn and wires every store against it.
func NewStores(dsn string) (*Stores, error) {
	db, err := OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: new stores: %w", err)
	}
	return &Stores{
		GhostStore:         NewGhostStore(db),
		PatternStore:       NewPatternStore(db),
		ExecutionStore:     NewExecutionStore(db),
		ExecutionLogStore:  NewExecutionLogStore(db),
		ApprovalStore:      NewApprovalStore(db),
		FeedbackStore:      NewFeedbackStore(db),
		OrgSettingsStore:   NewOrgSettingsStore(db),
		PolicyStore:        NewPolicyStore(db),
		Events:             NewEventStore(db),
		db:                 db,
	}, nil
}

func (s *Stores) Close() error {
	return s.db.Close()
}
