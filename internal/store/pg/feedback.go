package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// FeedbackStore implements governance.FeedbackStore. Like ExecutionLogStore,
// it relies on a database trigger (000002_append_only_audit) to reject
// mutation rather than trusting callers.
type FeedbackStore struct {
	db *sql.DB
}

func NewFeedbackStore(db *sql.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

func (s *FeedbackStore) AppendFeedback(ctx context.Context, f model.UserFeedback) error {
	if err := requireOrg(f.OrgID); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	correctedJSON, _ := json.Marshal(f.CorrectedActions)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_feedback (id, execution_id, ghost_id, org_id, user_id, satisfaction_score, corrected_actions, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		f.ID, f.ExecutionID, f.GhostID, f.OrgID, f.UserID, f.SatisfactionScore,
		correctedJSON, nilStr(f.Notes), f.CreatedAt,
	)
	return err
}

func (s *FeedbackStore) ListFeedback(ctx context.Context, orgID, executionID string) ([]model.UserFeedback, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, execution_id, ghost_id, org_id, user_id, satisfaction_score, corrected_actions, notes, created_at
		FROM user_feedback WHERE org_id=$1 AND execution_id=$2 ORDER BY created_at ASC`, orgID, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserFeedback
	for rows.Next() {
		var f model.UserFeedback
		var correctedJSON []byte
		var notes sql.NullString
		if err := rows.Scan(&f.ID, &f.ExecutionID, &f.GhostID, &f.OrgID, &f.UserID,
			&f.SatisfactionScore, &correctedJSON, &notes, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Notes = notes.String
		_ = json.Unmarshal(correctedJSON, &f.CorrectedActions)
		out = append(out, f)
	}
	return out, rows.Err()
}
