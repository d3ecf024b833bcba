package trigger

import (
	"context"
	"log/slog"
	"time"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// GhostLister lists a tenant's Ghosts by status; satisfied by
// governance.Store.
type GhostLister interface {
	ListGhosts(ctx context.Context, orgID string, status model.GhostStatus) ([]model.Ghost, error)
}

// Executor runs one Ghost and returns the finished Execution; satisfied by
// execution.Engine.
type Executor interface {
	Run(ctx context.Context, ghost model.Ghost, triggerLabel string, params map[string]any) model.Execution
}

// ExecutionSaver persists a finished Execution; satisfied by
// governance.Store.
type ExecutionSaver interface {
	SaveExecution(ctx context.Context, e model.Execution) error
}

// Runner ticks on a fixed interval and fires every schedule-triggered
// Ghost that is due, per configured org.
type Runner struct {
	Orgs      []string
	Interval  time.Duration
	Ghosts    GhostLister
	Executor  Executor
	Saver     ExecutionSaver
	Scheduler *Scheduler
	Logger    *slog.Logger
}

// Run blocks until ctx is cancelled, evaluating due schedules once per
// interval. Each due Ghost runs synchronously within the tick; schedule
// workloads are low-volume enough that a slow execution delaying the next
// tick is preferable to unbounded concurrent runs.
func (r *Runner) Run(ctx context.Context) {
	if r.Scheduler == nil {
		r.Scheduler = NewScheduler()
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Tick(ctx, now)
		}
	}
}

// Tick evaluates and fires every due schedule across the configured orgs.
func (r *Runner) Tick(ctx context.Context, now time.Time) {
	if r.Scheduler == nil {
		r.Scheduler = NewScheduler()
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	for _, orgID := range r.Orgs {
		for _, status := range []model.GhostStatus{model.GhostActive, model.GhostApproved} {
			ghosts, err := r.Ghosts.ListGhosts(ctx, orgID, status)
			if err != nil {
				r.Logger.Warn("trigger: list ghosts failed", "orgId", orgID, "error", err)
				continue
			}
			for _, g := range r.Scheduler.DueSchedules(ghosts, now) {
				exec := r.Executor.Run(ctx, g, "schedule", nil)
				if err := r.Saver.SaveExecution(ctx, exec); err != nil {
					r.Logger.Error("trigger: save scheduled execution failed", "ghostId", g.ID, "error", err)
				}
			}
		}
	}
}
