package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// EventStore persists Secure Events and serves the clustering pipeline's
// EventSource port. Defined here (rather than internal/governance) since
// secure_events is ingestion/clustering infrastructure, not a governance
// contract — but it is the same database and the same pgx/v5 connection
// pool. Array-typed columns are stored as jsonb and marshalled in Go
// rather than as native Postgres array types.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// InsertBatch appends every event in a SecureEventBatch.
func (s *EventStore) InsertBatch(ctx context.Context, orgID string, batch model.SecureEventBatch) error {
	if err := requireOrg(orgID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO secure_events (
			id, org_id, session_fingerprint, timestamp_bucket, intent_vector,
			structural_hash, event_type, intent_label, intent_confidence,
			element_signature, sequence_number, device_fingerprint, batch_id, ingested_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range batch.Events {
		bucket, err := time.Parse(time.RFC3339, e.TimestampBucket)
		if err != nil {
			bucket = time.Now()
		}
		vectorJSON, err := json.Marshal(e.IntentVector)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), orgID, e.SessionFingerprint, bucket, vectorJSON,
			e.StructuralHash, string(e.EventType), string(e.IntentLabel), e.IntentConfidence,
			e.ElementSignature, e.SequenceNumber, batch.DeviceFingerprint, batch.BatchID, time.Now(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentEvents implements clustering.EventSource: the most recent n Secure
// Events for an org, newest first.
func (s *EventStore) RecentEvents(ctx context.Context, orgID string, n int) ([]model.SecureEvent, error) {
	if err := requireOrg(orgID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_fingerprint, timestamp_bucket, intent_vector, structural_hash,
		       event_type, intent_label, intent_confidence, element_signature,
		       sequence_number, device_fingerprint, batch_id, ingested_at
		FROM secure_events WHERE org_id = $1
		ORDER BY ingested_at DESC LIMIT $2`, orgID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SecureEvent
	for rows.Next() {
		var e model.SecureEvent
		var bucket time.Time
		var vectorJSON []byte
		if err := rows.Scan(&e.SessionFingerprint, &bucket, &vectorJSON, &e.StructuralHash,
			&e.EventType, &e.IntentLabel, &e.IntentConfidence, &e.ElementSignature,
			&e.SequenceNumber, &e.DeviceFingerprint, &e.BatchID, &e.IngestedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(vectorJSON, &e.IntentVector)
		e.OrgID = orgID
		e.TimestampBucket = bucket.Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}
