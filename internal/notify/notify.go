// Package notify delivers human-escalation and approval-request
// notifications to an operator-facing channel. Both backends are one-way
// send-only notifiers: no inbound message handling, no conversation state.
package notify

import (
	"context"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Notifier delivers a Notification to a human-facing surface.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// MultiNotifier fans a Notification out to every configured backend,
// collecting (not stopping on) individual failures.
type MultiNotifier struct {
	backends []Notifier
}

// NewMultiNotifier constructs a MultiNotifier over the given backends. Nil
// backends are skipped so callers can pass conditionally-constructed
// notifiers directly.
func NewMultiNotifier(backends ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, b := range backends {
		if b != nil {
			m.backends = append(m.backends, b)
		}
	}
	return m
}

func (m *MultiNotifier) Notify(ctx context.Context, n model.Notification) error {
	var firstErr error
	for _, b := range m.backends {
		if err := b.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NoopNotifier drops every notification; used when no backend is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, model.Notification) error { return nil }
