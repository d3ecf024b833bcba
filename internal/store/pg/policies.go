package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// PolicyStore implements governance.PolicyStore against Postgres.
type PolicyStore struct {
	db *sql.DB
}

func NewPolicyStore(db *sql.DB) *PolicyStore {
	return &PolicyStore{db: db}
}

func (s *PolicyStore) ListPolicies(ctx context.Context, orgID string) ([]model.AutomationPolicy, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, description, condition, action, is_active
		FROM automation_policies WHERE org_id=$1 AND is_active=true`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AutomationPolicy
	for rows.Next() {
		var p model.AutomationPolicy
		var description sql.NullString
		var conditionJSON []byte
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &description, &conditionJSON, &p.Action, &p.IsActive); err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Condition = json.RawMessage(conditionJSON)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PolicyStore) UpsertPolicy(ctx context.Context, p model.AutomationPolicy) error {
	if err := requireOrg(p.OrgID); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	condition := p.Condition
	if condition == nil {
		condition = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO automation_policies (id, org_id, name, description, condition, action, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name=$3, description=$4, condition=$5, action=$6, is_active=$7`,
		p.ID, p.OrgID, p.Name, nilStr(p.Description), []byte(condition), p.Action, p.IsActive,
	)
	return err
}
