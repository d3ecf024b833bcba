// Package browser provides the Execution Engine's pluggable BrowserDriver
// port for the four browser-native tools (navigate_to, click_element,
// input_text, extract_data). The production default, QueueingDriver, never
// touches a real browser: the engine records the intent and leaves driving
// to an external, client-side actor. RodDriver is an optional real
// implementation for local/dev attachment.
package browser

import (
	"context"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Action is one browser-native tool invocation the Execution Engine asks a
// Driver to perform.
type Action struct {
	Tool   model.ToolName
	Params map[string]any
}

// Result is what a Driver returns for a browser-native tool call.
type Result struct {
	Output   map[string]any
	Strategy model.Strategy
}

// Driver is the port the Execution Engine calls for navigate_to,
// click_element, input_text and extract_data nodes.
//
// For click_element and input_text, Params["selector_strategy"] (if set)
// pins which single strategy to attempt; callers walking the
// semantic→structural→visual→coordinate order (internal/execution's
// selector walker) set it per attempt. An empty/absent value means
// "semantic" unless the Driver says otherwise.
type Driver interface {
	Execute(ctx context.Context, action Action) (Result, error)
}

func selectorStrategy(params map[string]any, fallback model.Strategy) model.Strategy {
	if v, ok := params["selector_strategy"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return model.Strategy(s)
		}
	}
	return fallback
}
