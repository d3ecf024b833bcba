package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghostlabs/ghost-core/internal/governance"
)

type approveGhostRequest struct {
	GhostID      string `json:"ghost_id"`
	OrgID        string `json:"org_id"`
	Action       string `json:"action"`
	DecisionNote string `json:"decision_note,omitempty"`
	ApprovedBy   string `json:"approved_by,omitempty"`
}

var validActions = map[string]governance.ApprovalAction{
	"approve":  governance.ActionApprove,
	"reject":   governance.ActionReject,
	"pause":    governance.ActionPause,
	"activate": governance.ActionActivate,
	"archive":  governance.ActionArchive,
}

// handleApproveGhost implements POST /approve-ghost. Like /ghost-executor, the wire shape the table names
// governance.RecordApproval is orgId-scoped throughout, so a missing
// org_id is rejected as a 400 alongside a missing ghost_id.
func (s *Server) handleApproveGhost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)

	var req approveGhostRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.GhostID == "" || req.OrgID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ARGS", "ghost_id, org_id and action are required")
		return
	}
	action, ok := validActions[req.Action]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ACTION", "action must be one of approve, reject, pause, activate, archive")
		return
	}

	updated, err := governance.RecordApproval(r.Context(), s.Store, req.OrgID, req.GhostID, action, req.ApprovedBy, req.DecisionNote)
	if err != nil {
		var invalid *governance.ErrInvalidTransition
		switch {
		case errors.Is(err, governance.ErrNotFound):
			writeError(w, http.StatusNotFound, "GHOST_NOT_FOUND", "ghost not found")
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, "INVALID_ACTION", invalid.Error())
		default:
			s.Logger.Error("httpapi: record approval failed", "ghostId", req.GhostID, "error", err)
			writeError(w, http.StatusInternalServerError, "UPDATE_FAILED", "failed to update ghost")
		}
		return
	}

	s.Metrics.IncApprovalsVoted(r.Context(), 1)
	s.hub.broadcastGhost(req.OrgID, updated)

	writeData(w, http.StatusOK, map[string]any{
		"success":   true,
		"new_status": updated.Status,
		"version":   updated.Version,
	})
}
