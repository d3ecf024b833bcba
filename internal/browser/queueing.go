package browser

import (
	"context"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// QueueingDriver is the production default BrowserDriver: it never drives
// a browser itself. It records the intent and hands it back for client-side
// execution, reporting work handed off elsewhere rather than completed
// in-process.
type QueueingDriver struct{}

// NewQueueingDriver constructs the no-op, record-the-intent driver.
func NewQueueingDriver() *QueueingDriver { return &QueueingDriver{} }

func (QueueingDriver) Execute(_ context.Context, action Action) (Result, error) {
	return Result{
		Output: map[string]any{
			"action": string(action.Tool),
			"params": action.Params,
			"note":   "Queued for client-side browser execution",
		},
		Strategy: selectorStrategy(action.Params, model.StrategySemantic),
	}, nil
}
