package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// Counters holds the engine's top-level operational counters: events
// ingested/dropped by the ingest endpoint, patterns
// clustered by the Temporal Intent Clustering pass, executions run by the
// Execution Engine, and approval decisions resolved.
type Counters struct {
	EventsIngested  metric.Int64Counter
	EventsDropped   metric.Int64Counter
	PatternsFound   metric.Int64Counter
	ExecutionsRun   metric.Int64Counter
	ApprovalsVoted  metric.Int64Counter
}

func newCounters(m metric.Meter) *Counters {
	c := &Counters{}
	var err error
	c.EventsIngested, err = m.Int64Counter("ghost.events.ingested",
		metric.WithDescription("Secure Events accepted by the ingest endpoint"))
	logInstrumentErr(err, "ghost.events.ingested")

	c.EventsDropped, err = m.Int64Counter("ghost.events.dropped",
		metric.WithDescription("Secure Events dropped by the ingest endpoint's per-device rate limit"))
	logInstrumentErr(err, "ghost.events.dropped")

	c.PatternsFound, err = m.Int64Counter("ghost.patterns.found",
		metric.WithDescription("Detected Patterns surviving confidence-fusion gating"))
	logInstrumentErr(err, "ghost.patterns.found")

	c.ExecutionsRun, err = m.Int64Counter("ghost.executions.run",
		metric.WithDescription("Ghost executions started by the Execution Engine"))
	logInstrumentErr(err, "ghost.executions.run")

	c.ApprovalsVoted, err = m.Int64Counter("ghost.approvals.resolved",
		metric.WithDescription("Approval requests resolved via /approve-ghost"))
	logInstrumentErr(err, "ghost.approvals.resolved")

	return c
}

func logInstrumentErr(err error, name string) {
	if err != nil {
		slog.Warn("telemetry: failed to create instrument", "name", name, "error", err)
	}
}

// IncIngested increments EventsIngested by n, guarding against a Noop
// Provider whose Counters fields are still valid no-op instruments.
func (c *Counters) IncIngested(ctx context.Context, n int64) {
	if c == nil || c.EventsIngested == nil {
		return
	}
	c.EventsIngested.Add(ctx, n)
}

func (c *Counters) IncDropped(ctx context.Context, n int64) {
	if c == nil || c.EventsDropped == nil {
		return
	}
	c.EventsDropped.Add(ctx, n)
}

func (c *Counters) IncPatternsFound(ctx context.Context, n int64) {
	if c == nil || c.PatternsFound == nil {
		return
	}
	c.PatternsFound.Add(ctx, n)
}

func (c *Counters) IncExecutionsRun(ctx context.Context, n int64) {
	if c == nil || c.ExecutionsRun == nil {
		return
	}
	c.ExecutionsRun.Add(ctx, n)
}

func (c *Counters) IncApprovalsVoted(ctx context.Context, n int64) {
	if c == nil || c.ApprovalsVoted == nil {
		return
	}
	c.ApprovalsVoted.Add(ctx, n)
}
