package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghostlabs/ghost-core/internal/governance"
)

type promotePatternRequest struct {
	OrgID       string `json:"orgId"`
	PatternID   string `json:"patternId"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// handlePromotePattern implements POST /promote-pattern: the server-side
// path for turning a Detected Pattern into a pending Ghost awaiting
// approval. A dashboard inserting the Ghost row directly converges on the
// same store contracts, so the pattern-transitions-once invariant holds
// either way.
func (s *Server) handlePromotePattern(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)

	var req promotePatternRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.OrgID == "" || req.PatternID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATTERN", "orgId and patternId are required")
		return
	}

	ghost, err := governance.PromotePattern(r.Context(), s.Store, s.Notify, req.OrgID, req.PatternID, req.RequestedBy)
	if err != nil {
		switch {
		case errors.Is(err, governance.ErrPatternAlreadyPromoted):
			writeError(w, http.StatusConflict, "PATTERN_ALREADY_PROMOTED", "pattern has already been promoted")
		case errors.Is(err, governance.ErrNotFound):
			writeError(w, http.StatusNotFound, "PATTERN_NOT_FOUND", "pattern not found")
		default:
			s.Logger.Error("httpapi: promote pattern failed", "patternId", req.PatternID, "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to promote pattern")
		}
		return
	}

	s.hub.broadcastGhost(req.OrgID, ghost)

	writeData(w, http.StatusOK, map[string]any{
		"ghostId": ghost.ID,
		"status":  ghost.Status,
		"version": ghost.Version,
	})
}
