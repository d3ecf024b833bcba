package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ExecutionStore implements governance.ExecutionStore against Postgres.
type ExecutionStore struct {
	db *sql.DB
}

func NewExecutionStore(db *sql.DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

func (s *ExecutionStore) SaveExecution(ctx context.Context, e model.Execution) error {
	if err := requireOrg(e.OrgID); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	paramsJSON, _ := json.Marshal(e.Parameters)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, ghost_id, org_id, status, parameters, trigger, step_count, started_at, completed_at, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			status=$4, parameters=$5, step_count=$7, completed_at=$9, error=$10`,
		e.ID, e.GhostID, e.OrgID, e.Status, paramsJSON, nilStr(e.Trigger), e.StepCount,
		e.StartedAt, e.CompletedAt, nilStr(e.Error),
	)
	if err != nil {
		return err
	}

	for _, step := range e.Steps {
		outputJSON, _ := json.Marshal(step.Output)
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO execution_steps (id, execution_id, node_id, status, strategy, duration_ms, output, error, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			uuid.NewString(), e.ID, step.NodeID, step.Status, step.Strategy, step.DurationMS,
			outputJSON, nilStr(step.Error), time.Now(),
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExecutionStore) GetExecution(ctx context.Context, orgID, executionID string) (model.Execution, error) {
	if err := requireOrg(orgID); err != nil {
		return model.Execution{}, err
	}
	var e model.Execution
	var paramsJSON []byte
	var trigger, errStr sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, ghost_id, org_id, status, parameters, trigger, step_count, started_at, completed_at, error
		FROM executions WHERE org_id=$1 AND id=$2`, orgID, executionID,
	).Scan(&e.ID, &e.GhostID, &e.OrgID, &e.Status, &paramsJSON, &trigger, &e.StepCount,
		&e.StartedAt, &e.CompletedAt, &errStr)
	if err != nil {
		return model.Execution{}, err
	}
	e.Trigger = trigger.String
	e.Error = errStr.String
	_ = json.Unmarshal(paramsJSON, &e.Parameters)

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, status, strategy, duration_ms, output, error
		FROM execution_steps WHERE execution_id=$1 ORDER BY created_at ASC`, executionID)
	if err != nil {
		return e, err
	}
	defer rows.Close()
	for rows.Next() {
		var step model.ExecutionStep
		var outputJSON []byte
		var stepErr sql.NullString
		if err := rows.Scan(&step.NodeID, &step.Status, &step.Strategy, &step.DurationMS, &outputJSON, &stepErr); err != nil {
			return e, err
		}
		step.Error = stepErr.String
		_ = json.Unmarshal(outputJSON, &step.Output)
		e.Steps = append(e.Steps, step)
	}
	return e, rows.Err()
}

func (s *ExecutionStore) ListExecutions(ctx context.Context, orgID, ghostID string) ([]model.Execution, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	var rows *sql.Rows
	var err error
	if ghostID != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id FROM executions WHERE org_id=$1 AND ghost_id=$2 ORDER BY started_at DESC`, orgID, ghostID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id FROM executions WHERE org_id=$1 ORDER BY started_at DESC`, orgID)
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

	out := make([]model.Execution, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetExecution(ctx, orgID, id)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ExecutionLogStore implements governance.ExecutionLogStore. Writes rely on
// 000002_append_only_audit.up.sql to reject any later UPDATE/DELETE; this
// store never issues one.
type ExecutionLogStore struct {
	db *sql.DB
}

func NewExecutionLogStore(db *sql.DB) *ExecutionLogStore {
	return &ExecutionLogStore{db: db}
}

func (s *ExecutionLogStore) AppendExecutionLog(ctx context.Context, log model.ExecutionLog) error {
	if err := requireOrg(log.OrgID); err != nil {
		return err
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now()
	}
	stepsJSON, _ := json.Marshal(log.Steps)
	strategiesJSON, _ := json.Marshal(log.StrategiesUsed)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_logs (id, execution_id, ghost_id, org_id, status, steps, duration_ms, strategies_used, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		log.ID, log.ExecutionID, log.GhostID, log.OrgID, log.Status, stepsJSON,
		log.DurationMS, strategiesJSON, log.LoggedAt,
	)
	return err
}

func (s *ExecutionLogStore) ListExecutionLogs(ctx context.Context, orgID, executionID string) ([]model.ExecutionLog, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, execution_id, ghost_id, org_id, status, steps, duration_ms, strategies_used, logged_at
		FROM execution_logs WHERE org_id=$1 AND execution_id=$2 ORDER BY logged_at ASC`, orgID, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ExecutionLog
	for rows.Next() {
		var l model.ExecutionLog
		var stepsJSON, strategiesJSON []byte
		if err := rows.Scan(&l.ID, &l.ExecutionID, &l.GhostID, &l.OrgID, &l.Status,
			&stepsJSON, &l.DurationMS, &strategiesJSON, &l.LoggedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(stepsJSON, &l.Steps)
		_ = json.Unmarshal(strategiesJSON, &l.StrategiesUsed)
		out = append(out, l)
	}
	return out, rows.Err()
}
