// Package trigger evaluates Ghost triggers:
// schedule triggers via cron expressions, event/api triggers via an
// injected ConditionEvaluator over an opaque condition payload.
//
// Cron evaluation uses github.com/adhocore/gronx.
package trigger

import (
	"encoding/json"
	"time"

	"github.com/adhocore/gronx"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// ConditionEvaluator decides whether an event/api trigger's opaque condition
// is satisfied given a fact context. The condition grammar is not pinned
// down yet, so this is left pluggable; AlwaysTrueEvaluator is the permissive
// implementation.
type ConditionEvaluator interface {
	Evaluate(condition json.RawMessage, facts map[string]any) (bool, error)
}

// AlwaysTrueEvaluator treats every condition as satisfied.
type AlwaysTrueEvaluator struct{}

func (AlwaysTrueEvaluator) Evaluate(json.RawMessage, map[string]any) (bool, error) {
	return true, nil
}

// Scheduler evaluates cron-type Ghost triggers.
type Scheduler struct {
	cron *gronx.Gronx
}

// NewScheduler constructs a Scheduler backed by gronx.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: gronx.New()}
}

// IsDue reports whether g's schedule trigger is due at now. Non-schedule
// triggers, missing cron expressions, and invalid expressions are never due.
func (s *Scheduler) IsDue(g model.Ghost, now time.Time) bool {
	if g.Trigger.Type != model.TriggerTypeSchedule || g.Trigger.Cron == "" {
		return false
	}
	due, err := s.cron.IsDue(g.Trigger.Cron, now)
	if err != nil {
		return false
	}
	return due
}

// DueSchedules filters ghosts to those with an active schedule trigger due
// at now.
func (s *Scheduler) DueSchedules(ghosts []model.Ghost, now time.Time) []model.Ghost {
	var due []model.Ghost
	for _, g := range ghosts {
		if g.Status != model.GhostActive && g.Status != model.GhostApproved {
			continue
		}
		if s.IsDue(g, now) {
			due = append(due, g)
		}
	}
	return due
}

// MatchesEvent reports whether g's event trigger condition is satisfied by
// facts, using the supplied evaluator.
func MatchesEvent(g model.Ghost, facts map[string]any, eval ConditionEvaluator) (bool, error) {
	if g.Trigger.Type != model.TriggerTypeEvent {
		return false, nil
	}
	return eval.Evaluate(g.Trigger.Condition, facts)
}
