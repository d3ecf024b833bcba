package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ApprovalStore implements governance.ApprovalStore against Postgres.
type ApprovalStore struct {
	db *sql.DB
}

func NewApprovalStore(db *sql.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) CreateApprovalRequest(ctx context.Context, r model.ApprovalRequest) (model.ApprovalRequest, error) {
	if err := requireOrg(r.OrgID); err != nil {
		return model.ApprovalRequest{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.ExpiresAt.IsZero() {
		r.ExpiresAt = now.Add(24 * time.Hour)
	}
	if r.Status == "" {
		r.Status = model.ApprovalPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approval_requests (id, ghost_id, execution_id, org_id, requested_by, approved_by, status, reason, decision_note, expires_at, created_at, resolved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.GhostID, nilStr(r.ExecutionID), r.OrgID, r.RequestedBy, nilStr(r.ApprovedBy),
		r.Status, nilStr(r.Reason), nilStr(r.DecisionNote), r.ExpiresAt, r.CreatedAt, r.ResolvedAt,
	)
	return r, err
}

func (s *ApprovalStore) GetPendingApproval(ctx context.Context, orgID, ghostID string) (model.ApprovalRequest, error) {
	if err := requireOrg(orgID); err != nil {
		return model.ApprovalRequest{}, err
	}
	var r model.ApprovalRequest
	var executionID, approvedBy, reason, decisionNote sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, ghost_id, execution_id, org_id, requested_by, approved_by, status, reason, decision_note, expires_at, created_at, resolved_at
		FROM approval_requests WHERE org_id=$1 AND ghost_id=$2 AND status='pending'
		ORDER BY created_at DESC LIMIT 1`, orgID, ghostID,
	).Scan(&r.ID, &r.GhostID, &executionID, &r.OrgID, &r.RequestedBy, &approvedBy, &r.Status,
		&reason, &decisionNote, &r.ExpiresAt, &r.CreatedAt, &r.ResolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ApprovalRequest{}, nil
	}
	if err != nil {
		return model.ApprovalRequest{}, err
	}
	r.ExecutionID = executionID.String
	r.ApprovedBy = approvedBy.String
	r.Reason = reason.String
	r.DecisionNote = decisionNote.String
	return r, nil
}

func (s *ApprovalStore) ResolveApproval(ctx context.Context, requestID string, status model.ApprovalStatus, approvedBy, decisionNote string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		UPDATE approval_requests SET status=$1, approved_by=$2, decision_note=$3, resolved_at=$4
		WHERE id=$5`, status, nilStr(approvedBy), nilStr(decisionNote), now, requestID)
	return err
}
