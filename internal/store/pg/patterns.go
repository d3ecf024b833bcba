package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// PatternStore implements governance.PatternStore against Postgres.
type PatternStore struct {
	db *sql.DB
}

func NewPatternStore(db *sql.DB) *PatternStore {
	return &PatternStore{db: db}
}

// UpsertPattern matches by id. The clustering pipeline derives the id
// deterministically from (org, intent sequence, structural hashes), so
// re-running detection over the same events updates the existing row.
func (s *PatternStore) UpsertPattern(ctx context.Context, p model.DetectedPattern) error {
	if err := requireOrg(p.OrgID); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	seqJSON, _ := json.Marshal(p.IntentSequence)
	hashJSON, _ := json.Marshal(p.StructuralHashes)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detected_patterns (
			id, org_id, intent_sequence, structural_hashes, occurrences, confidence,
			suggested_name, suggested_description, first_seen, last_seen, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			occurrences=$5, confidence=$6, suggested_name=$7, suggested_description=$8,
			last_seen=$10, status=$11, updated_at=$13`,
		p.ID, p.OrgID, seqJSON, hashJSON, p.Occurrences, p.Confidence,
		nilStr(p.SuggestedName), nilStr(p.SuggestedDescription), p.FirstSeen, p.LastSeen,
		p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PatternStore) ListPatterns(ctx context.Context, orgID string, status model.PatternStatus) ([]model.DetectedPattern, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.QueryContext(ctx, patternSelect+` WHERE org_id=$1 AND status=$2 ORDER BY last_seen DESC`, orgID, status)
	} else {
		rows, err = s.db.QueryContext(ctx, patternSelect+` WHERE org_id=$1 ORDER BY last_seen DESC`, orgID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatterns(rows)
}

func (s *PatternStore) GetPattern(ctx context.Context, orgID, patternID string) (model.DetectedPattern, error) {
	if err := requireOrg(orgID); err != nil {
		return model.DetectedPattern{}, err
	}
	rows, err := s.db.QueryContext(ctx, patternSelect+` WHERE org_id=$1 AND id=$2`, orgID, patternID)
	if err != nil {
		return model.DetectedPattern{}, err
	}
	defer rows.Close()
	out, err := scanPatterns(rows)
	if err != nil {
		return model.DetectedPattern{}, err
	}
	if len(out) == 0 {
		return model.DetectedPattern{}, fmt.Errorf("%w: pattern %q", governance.ErrNotFound, patternID)
	}
	return out[0], nil
}

const patternSelect = `SELECT id, org_id, intent_sequence, structural_hashes, occurrences, confidence,
	suggested_name, suggested_description, first_seen, last_seen, status, created_at, updated_at
	FROM detected_patterns`

func scanPatterns(rows *sql.Rows) ([]model.DetectedPattern, error) {
	var out []model.DetectedPattern
	for rows.Next() {
		var p model.DetectedPattern
		var seqJSON, hashJSON []byte
		var suggestedName, suggestedDesc sql.NullString
		if err := rows.Scan(&p.ID, &p.OrgID, &seqJSON, &hashJSON, &p.Occurrences, &p.Confidence,
			&suggestedName, &suggestedDesc, &p.FirstSeen, &p.LastSeen, &p.Status,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.SuggestedName = suggestedName.String
		p.SuggestedDescription = suggestedDesc.String
		_ = json.Unmarshal(seqJSON, &p.IntentSequence)
		_ = json.Unmarshal(hashJSON, &p.StructuralHashes)
		out = append(out, p)
	}
	return out, rows.Err()
}
