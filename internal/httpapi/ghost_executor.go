package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/model"
)

type ghostExecutorRequest struct {
	GhostID    string         `json:"ghostId"`
	OrgID      string         `json:"orgId"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Trigger    string         `json:"trigger,omitempty"`
}

// handleGhostExecutor implements POST /ghost-executor. Every governance
// store lookup is orgId-scoped by design, so orgId is required here and
// its absence is a 400 just like a missing ghostId, rather than inventing
// an org-less lookup path.
func (s *Server) handleGhostExecutor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)

	var req ghostExecutorRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.GhostID == "" || req.OrgID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_GHOST", "ghostId and orgId are required")
		return
	}

	ghost, err := s.Store.GetGhost(r.Context(), req.OrgID, req.GhostID)
	if err != nil {
		if errors.Is(err, governance.ErrNotFound) {
			writeError(w, http.StatusNotFound, "GHOST_NOT_FOUND", "ghost not found")
			return
		}
		s.Logger.Error("httpapi: get ghost failed", "ghostId", req.GhostID, "error", err)
		writeError(w, http.StatusInternalServerError, "EXECUTION_ERROR", "failed to load ghost")
		return
	}

	if ghost.Status != model.GhostApproved && ghost.Status != model.GhostActive {
		writeError(w, http.StatusForbidden, "GHOST_NOT_APPROVED", "ghost is not approved or active")
		return
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = "api"
	}
	exec := s.Executor.Run(r.Context(), ghost, trigger, req.Parameters)

	if err := s.Store.SaveExecution(r.Context(), exec); err != nil {
		s.Logger.Error("httpapi: save execution failed", "executionId", exec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "EXECUTION_ERROR", "failed to persist execution")
		return
	}
	s.Metrics.IncExecutionsRun(r.Context(), 1)
	s.hub.broadcastExecution(req.OrgID, exec)

	writeData(w, http.StatusOK, map[string]any{
		"executionId": exec.ID,
		"status":      exec.Status,
		"steps":       exec.Steps,
	})
}
