package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// OrgSettingsStore implements governance.OrgSettingsStore against Postgres.
type OrgSettingsStore struct {
	db *sql.DB
}

func NewOrgSettingsStore(db *sql.DB) *OrgSettingsStore {
	return &OrgSettingsStore{db: db}
}

func (s *OrgSettingsStore) GetOrgSettings(ctx context.Context, orgID string) (model.OrgSettings, error) {
	if err := requireOrg(orgID); err != nil {
		return model.OrgSettings{}, err
	}
	var o model.OrgSettings
	var settingsJSON []byte
	var requireApprovalAbove sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
		SELECT org_id, settings, auto_approve_threshold, max_executions_per_minute, llm_provider, llm_model, require_approval_above_value
		FROM org_settings WHERE org_id=$1`, orgID,
	).Scan(&o.OrgID, &settingsJSON, &o.AutoApproveThreshold, &o.MaxExecutionsPerMinute,
		&o.LLMProvider, &o.LLMModel, &requireApprovalAbove)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultOrgSettings(orgID), nil
	}
	if err != nil {
		return model.OrgSettings{}, err
	}
	_ = json.Unmarshal(settingsJSON, &o.Settings)
	if requireApprovalAbove.Valid {
		v := requireApprovalAbove.Float64
		o.RequireApprovalAboveValue = &v
	}
	return o, nil
}

func (s *OrgSettingsStore) UpsertOrgSettings(ctx context.Context, o model.OrgSettings) error {
	if err := requireOrg(o.OrgID); err != nil {
		return err
	}
	settingsJSON, _ := json.Marshal(o.Settings)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO org_settings (org_id, settings, auto_approve_threshold, max_executions_per_minute, llm_provider, llm_model, require_approval_above_value)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (org_id) DO UPDATE SET
			settings=$2, auto_approve_threshold=$3, max_executions_per_minute=$4,
			llm_provider=$5, llm_model=$6, require_approval_above_value=$7`,
		o.OrgID, settingsJSON, o.AutoApproveThreshold, o.MaxExecutionsPerMinute,
		o.LLMProvider, o.LLMModel, o.RequireApprovalAboveValue,
	)
	return err
}

func defaultOrgSettings(orgID string) model.OrgSettings {
	return model.OrgSettings{
		OrgID:                  orgID,
		AutoApproveThreshold:   0.95,
		MaxExecutionsPerMinute: 10,
		LLMProvider:            "anthropic",
	}
}
