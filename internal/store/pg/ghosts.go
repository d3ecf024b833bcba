package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// GhostStore implements governance.GhostStore against Postgres.
type GhostStore struct {
	db *sql.DB
}

func NewGhostStore(db *sql.DB) *GhostStore {
	return &GhostStore{db: db}
}

func (s *GhostStore) GetGhost(ctx context.Context, orgID, ghostID string) (model.Ghost, error) {
	if err := requireOrg(orgID); err != nil {
		return model.Ghost{}, err
	}
	var g model.Ghost
	var triggerJSON, paramsJSON, planJSON, statsJSON []byte
	var description, createdBy, approvedBy, sourcePatternID sql.NullString
	var confidence sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, description, version, status, trigger, parameters,
		       execution_plan, confidence, source_pattern_id, created_by, approved_by,
		       is_active, usage_stats, created_at, updated_at
		FROM ghosts WHERE org_id = $1 AND id = $2`, orgID, ghostID,
	).Scan(&g.ID, &g.OrgID, &g.Name, &description, &g.Version, &g.Status, &triggerJSON,
		&paramsJSON, &planJSON, &confidence, &sourcePatternID, &createdBy, &approvedBy,
		&g.IsActive, &statsJSON, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ghost{}, fmt.Errorf("%w: ghost %q", governance.ErrNotFound, ghostID)
	}
	if err != nil {
		return model.Ghost{}, err
	}

	g.Description = description.String
	g.CreatedBy = createdBy.String
	g.ApprovedBy = approvedBy.String
	g.SourcePatternID = sourcePatternID.String
	g.Confidence = confidence.Float64
	_ = json.Unmarshal(triggerJSON, &g.Trigger)
	_ = json.Unmarshal(paramsJSON, &g.Parameters)
	_ = json.Unmarshal(planJSON, &g.ExecutionPlan)
	_ = json.Unmarshal(statsJSON, &g.UsageStats)
	return g, nil
}

func (s *GhostStore) CreateGhost(ctx context.Context, g model.Ghost) (model.Ghost, error) {
	if err := requireOrg(g.OrgID); err != nil {
		return model.Ghost{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	if g.Version == 0 {
		g.Version = 1
	}

	triggerJSON, _ := json.Marshal(g.Trigger)
	paramsJSON, _ := json.Marshal(g.Parameters)
	planJSON, _ := json.Marshal(g.ExecutionPlan)
	statsJSON, _ := json.Marshal(g.UsageStats)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ghosts (
			id, org_id, name, description, version, status, trigger, parameters,
			execution_plan, confidence, source_pattern_id, created_by, approved_by,
			is_active, usage_stats, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		g.ID, g.OrgID, g.Name, nilStr(g.Description), g.Version, g.Status, triggerJSON,
		paramsJSON, planJSON, g.Confidence, nilStr(g.SourcePatternID), nilStr(g.CreatedBy),
		nilStr(g.ApprovedBy), g.IsActive, statsJSON, g.CreatedAt, g.UpdatedAt,
	)
	return g, err
}

func (s *GhostStore) UpdateGhost(ctx context.Context, g model.Ghost) error {
	if err := requireOrg(g.OrgID); err != nil {
		return err
	}
	g.UpdatedAt = time.Now()
	statsJSON, _ := json.Marshal(g.UsageStats)

	_, err := s.db.ExecContext(ctx, `
		UPDATE ghosts SET name=$1, description=$2, version=$3, status=$4,
			confidence=$5, approved_by=$6, is_active=$7, usage_stats=$8, updated_at=$9
		WHERE org_id=$10 AND id=$11`,
		g.Name, nilStr(g.Description), g.Version, g.Status, g.Confidence,
		nilStr(g.ApprovedBy), g.IsActive, statsJSON, g.UpdatedAt, g.OrgID, g.ID,
	)
	return err
}

func (s *GhostStore) ListGhosts(ctx context.Context, orgID string, status model.GhostStatus) ([]model.Ghost, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id FROM ghosts WHERE org_id=$1 AND status=$2 ORDER BY updated_at DESC`, orgID, status)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id FROM ghosts WHERE org_id=$1 ORDER BY updated_at DESC`, orgID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	out := make([]model.Ghost, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetGhost(ctx, orgID, id)
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *GhostStore) AppendGhostVersion(ctx context.Context, v model.GhostVersion) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	planJSON, _ := json.Marshal(v.ExecutionPlan)
	paramsJSON, _ := json.Marshal(v.Parameters)
	triggerJSON, _ := json.Marshal(v.Trigger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ghost_versions (id, ghost_id, version, execution_plan, parameters, trigger, change_description, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (ghost_id, version) DO NOTHING`,
		v.ID, v.GhostID, v.Version, planJSON, paramsJSON, triggerJSON,
		nilStr(v.ChangeDescription), nilStr(v.CreatedBy), v.CreatedAt,
	)
	return err
}

func nilStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
