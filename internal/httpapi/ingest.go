package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/clustering"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// maxBatchEvents is the hard batch-size cap:
// events.length > 100 is rejected outright, never truncated.
const maxBatchEvents = 100

// handleIngestEvents implements POST /ingest-events.
func (s *Server) handleIngestEvents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)

	var batch model.SecureEventBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil || len(batch.Events) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_BATCH", "events must be a non-empty array")
		return
	}
	if len(batch.Events) > maxBatchEvents {
		writeError(w, http.StatusBadRequest, "BATCH_TOO_LARGE", "events.length exceeds the per-batch cap of 100")
		return
	}

	device := r.Header.Get("X-Ghost-Device")
	if device == "" {
		device = batch.DeviceFingerprint
	}
	if device != "" {
		batch.DeviceFingerprint = device
	}

	if s.RateLimit != nil && device != "" && !s.RateLimit.AllowEvents(device, len(batch.Events)) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "device exceeded 1000 events/min")
		s.Metrics.IncDropped(r.Context(), int64(len(batch.Events)))
		return
	}

	if batch.BatchID == "" {
		batch.BatchID = uuid.NewString()
	}

	byOrg := make(map[string][]model.SecureEvent)
	for _, e := range batch.Events {
		byOrg[e.OrgID] = append(byOrg[e.OrgID], e)
	}

	for orgID, events := range byOrg {
		sub := batch
		sub.Events = events
		if err := s.Events.InsertBatch(r.Context(), orgID, sub); err != nil {
			s.Logger.Error("httpapi: insert batch failed", "orgId", orgID, "error", err)
			writeError(w, http.StatusInternalServerError, "INSERT_FAILED", "failed to persist events")
			return
		}
	}

	s.Metrics.IncIngested(r.Context(), int64(len(batch.Events)))
	writeData(w, http.StatusAccepted, map[string]any{
		"accepted": len(batch.Events),
		"batchId":  batch.BatchID,
	})

	// Fire-and-forget: invoke the clustering pass for every distinct orgId
	// in the batch without delaying the 202.
	for orgID := range byOrg {
		go s.runClusteringAsync(orgID, batch.BatchID)
	}
}

func (s *Server) runClusteringAsync(orgID, batchID string) {
	ctx := context.Background()
	patterns, err := clustering.Run(ctx, orgID, s.Events, s.Store, s.LLM)
	if err != nil {
		slog.Warn("httpapi: fire-and-forget clustering failed", "orgId", orgID, "batchId", batchID, "error", err)
		return
	}
	s.Metrics.IncPatternsFound(ctx, int64(len(patterns)))
	s.hub.broadcastPatterns(orgID, patterns)
}
