package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ghostlabs/ghost-core/internal/clustering"
)

type patternDetectorRequest struct {
	OrgID   string `json:"orgId"`
	BatchID string `json:"batchId,omitempty"`
	Trigger string `json:"trigger,omitempty"`
}

// handlePatternDetector implements POST /pattern-detector.
func (s *Server) handlePatternDetector(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)

	var req patternDetectorRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.OrgID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ORG", "orgId is required")
		return
	}

	patterns, err := clustering.Run(r.Context(), req.OrgID, s.Events, s.Store, s.LLM)
	if err != nil {
		s.Logger.Error("httpapi: pattern detection failed", "orgId", req.OrgID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "pattern detection failed")
		return
	}
	s.Metrics.IncPatternsFound(r.Context(), int64(len(patterns)))
	s.hub.broadcastPatterns(req.OrgID, patterns)

	writeData(w, http.StatusOK, map[string]any{
		"patternsFound": len(patterns),
		"patterns":      patterns,
	})
}
