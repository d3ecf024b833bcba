package execution

import (
	"context"

	"github.com/ghostlabs/ghost-core/internal/browser"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// strategyOrder is the element-selection fallback order for any
// click_element/input_text node. Coordinate is a deprecated last resort.
var strategyOrder = []model.Strategy{
	model.StrategySemantic,
	model.StrategyStructural,
	model.StrategyVisual,
	model.StrategyCoordinate,
}

// attemptOrder returns the strategies to try for one node: the plan's own
// selector_strategy first when it names one, then the remaining fallback
// order after it. With no pin the full order is walked from the start, so
// an unpinned node defaults to semantic.
func attemptOrder(params map[string]any) []model.Strategy {
	pinned, ok := params["selector_strategy"].(string)
	if !ok || pinned == "" {
		return strategyOrder
	}
	out := []model.Strategy{model.Strategy(pinned)}
	past := false
	for _, s := range strategyOrder {
		if string(s) == pinned {
			past = true
			continue
		}
		if past {
			out = append(out, s)
		}
	}
	return out
}

// browserHandler delegates a browser-native tool call to driver. The first
// attempt uses the plan's pinned selector_strategy (semantic when unset);
// the walk only advances when an attempt errors. The production
// QueueingDriver never errors, so against it the pinned strategy is a
// straight passthrough and the recorded strategy is exactly what the plan
// asked for — the fallback order is exercised only by a real driver
// (browser.RodDriver) that can fail per-strategy.
func browserHandler(driver browser.Driver, tool model.ToolName) ToolHandler {
	return func(ctx context.Context, params map[string]any) (any, model.Strategy, error) {
		var lastErr error
		for _, strategy := range attemptOrder(params) {
			attemptParams := make(map[string]any, len(params)+1)
			for k, v := range params {
				attemptParams[k] = v
			}
			attemptParams["selector_strategy"] = string(strategy)

			res, err := driver.Execute(ctx, browser.Action{Tool: tool, Params: attemptParams})
			if err == nil {
				return res.Output, res.Strategy, nil
			}
			lastErr = err
		}
		return nil, model.StrategyUnknown, lastErr
	}
}
