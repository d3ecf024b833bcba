// Package memstore is an in-memory implementation of every
// internal/governance contract plus internal/clustering's EventSource and
// PatternSink ports, for use in tests and local/offline runs without a
// Postgres instance: a single mutex-guarded struct standing in for the
// Postgres-backed store during tests and standalone mode.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// Store is an in-memory governance.Store plus clustering.EventSource/
// PatternSink.
type Store struct {
	mu sync.RWMutex

	ghosts        map[string]model.Ghost // keyed by ghostID
	ghostVersions []model.GhostVersion
	patterns      map[string]model.DetectedPattern // keyed by patternID
	executions    map[string]model.Execution       // keyed by executionID
	executionLogs []model.ExecutionLog
	approvals     map[string]model.ApprovalRequest // keyed by requestID
	feedback      []model.UserFeedback
	orgSettings   map[string]model.OrgSettings // keyed by orgID
	policies      map[string]model.AutomationPolicy
	events        []model.SecureEvent
}

var _ governance.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		ghosts:      make(map[string]model.Ghost),
		patterns:    make(map[string]model.DetectedPattern),
		executions:  make(map[string]model.Execution),
		approvals:   make(map[string]model.ApprovalRequest),
		orgSettings: make(map[string]model.OrgSettings),
		policies:    make(map[string]model.AutomationPolicy),
	}
}

// --- GhostStore ---

func (s *Store) GetGhost(_ context.Context, orgID, ghostID string) (model.Ghost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.ghosts[ghostID]
	if !ok || g.OrgID != orgID {
		return model.Ghost{}, fmt.Errorf("%w: ghost %q", governance.ErrNotFound, ghostID)
	}
	return g, nil
}

func (s *Store) CreateGhost(_ context.Context, g model.Ghost) (model.Ghost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	if g.Version == 0 {
		g.Version = 1
	}
	s.ghosts[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGhost(_ context.Context, g model.Ghost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ghosts[g.ID]; !ok {
		return fmt.Errorf("%w: ghost %q", governance.ErrNotFound, g.ID)
	}
	g.UpdatedAt = time.Now()
	s.ghosts[g.ID] = g
	return nil
}

func (s *Store) ListGhosts(_ context.Context, orgID string, status model.GhostStatus) ([]model.Ghost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Ghost
	for _, g := range s.ghosts {
		if g.OrgID != orgID {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) AppendGhostVersion(_ context.Context, v model.GhostVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	s.ghostVersions = append(s.ghostVersions, v)
	return nil
}

// --- PatternStore ---

func (s *Store) UpsertPattern(_ context.Context, p model.DetectedPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.patterns[p.ID] = p
	return nil
}

func (s *Store) ListPatterns(_ context.Context, orgID string, status model.PatternStatus) ([]model.DetectedPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.DetectedPattern
	for _, p := range s.patterns {
		if p.OrgID != orgID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out, nil
}

func (s *Store) GetPattern(_ context.Context, orgID, patternID string) (model.DetectedPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[patternID]
	if !ok || p.OrgID != orgID {
		return model.DetectedPattern{}, fmt.Errorf("%w: pattern %q", governance.ErrNotFound, patternID)
	}
	return p, nil
}

// --- clustering ports ---

// RecentEvents implements clustering.EventSource.
func (s *Store) RecentEvents(_ context.Context, orgID string, n int) ([]model.SecureEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SecureEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		if s.events[i].OrgID == orgID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// InsertBatch implements the same storage port as internal/store/pg's
// EventStore: not part of governance.Store, since secure_events is
// ingestion/clustering infrastructure rather than a governance table, but
// the shape the ingest handler depends on either way.
func (s *Store) InsertBatch(_ context.Context, orgID string, batch model.SecureEventBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range batch.Events {
		e.OrgID = orgID
		e.DeviceFingerprint = batch.DeviceFingerprint
		e.BatchID = batch.BatchID
		if e.IngestedAt.IsZero() {
			e.IngestedAt = time.Now()
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.events = append(s.events, e)
	}
	return nil
}

// --- ExecutionStore ---

func (s *Store) SaveExecution(_ context.Context, e model.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.executions[e.ID] = e
	return nil
}

func (s *Store) GetExecution(_ context.Context, orgID, executionID string) (model.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.executions[executionID]
	if !ok || e.OrgID != orgID {
		return model.Execution{}, fmt.Errorf("%w: execution %q", governance.ErrNotFound, executionID)
	}
	return e, nil
}

func (s *Store) ListExecutions(_ context.Context, orgID, ghostID string) ([]model.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Execution
	for _, e := range s.executions {
		if e.OrgID != orgID {
			continue
		}
		if ghostID != "" && e.GhostID != ghostID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// --- ExecutionLogStore ---

func (s *Store) AppendExecutionLog(_ context.Context, log model.ExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now()
	}
	s.executionLogs = append(s.executionLogs, log)
	return nil
}

func (s *Store) ListExecutionLogs(_ context.Context, orgID, executionID string) ([]model.ExecutionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ExecutionLog
	for _, l := range s.executionLogs {
		if l.OrgID == orgID && l.ExecutionID == executionID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- ApprovalStore ---

func (s *Store) CreateApprovalRequest(_ context.Context, r model.ApprovalRequest) (model.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.ExpiresAt.IsZero() {
		r.ExpiresAt = now.Add(24 * time.Hour)
	}
	if r.Status == "" {
		r.Status = model.ApprovalPending
	}
	s.approvals[r.ID] = r
	return r, nil
}

func (s *Store) GetPendingApproval(_ context.Context, orgID, ghostID string) (model.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest model.ApprovalRequest
	for _, r := range s.approvals {
		if r.OrgID != orgID || r.GhostID != ghostID || r.Status != model.ApprovalPending {
			continue
		}
		if r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, nil
}

func (s *Store) ResolveApproval(_ context.Context, requestID string, status model.ApprovalStatus, approvedBy, decisionNote string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.approvals[requestID]
	if !ok {
		return fmt.Errorf("%w: approval request %q", governance.ErrNotFound, requestID)
	}
	now := time.Now()
	r.Status = status
	r.ApprovedBy = approvedBy
	r.DecisionNote = decisionNote
	r.ResolvedAt = &now
	s.approvals[requestID] = r
	return nil
}

// --- FeedbackStore ---

func (s *Store) AppendFeedback(_ context.Context, f model.UserFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	s.feedback = append(s.feedback, f)
	return nil
}

func (s *Store) ListFeedback(_ context.Context, orgID, executionID string) ([]model.UserFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.UserFeedback
	for _, f := range s.feedback {
		if f.OrgID == orgID && f.ExecutionID == executionID {
			out = append(out, f)
		}
	}
	return out, nil
}

// --- OrgSettingsStore ---

func (s *Store) GetOrgSettings(_ context.Context, orgID string) (model.OrgSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.orgSettings[orgID]; ok {
		return o, nil
	}
	return model.OrgSettings{
		OrgID:                  orgID,
		AutoApproveThreshold:   0.95,
		MaxExecutionsPerMinute: 10,
		LLMProvider:            "anthropic",
	}, nil
}

func (s *Store) UpsertOrgSettings(_ context.Context, o model.OrgSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgSettings[o.OrgID] = o
	return nil
}

// --- PolicyStore ---

func (s *Store) ListPolicies(_ context.Context, orgID string) ([]model.AutomationPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AutomationPolicy
	for _, p := range s.policies {
		if p.OrgID == orgID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) UpsertPolicy(_ context.Context, p model.AutomationPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.policies[p.ID] = p
	return nil
}
