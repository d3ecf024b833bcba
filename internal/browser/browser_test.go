package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestSelectorStrategyDefaultsWhenAbsent(t *testing.T) {
	require.Equal(t, model.StrategySemantic, selectorStrategy(map[string]any{}, model.StrategySemantic))
}

func TestSelectorStrategyHonorsExplicitValue(t *testing.T) {
	params := map[string]any{"selector_strategy": "structural"}
	require.Equal(t, model.StrategyStructural, selectorStrategy(params, model.StrategySemantic))
}

func TestQueueingDriverRecordsIntentForEachBrowserTool(t *testing.T) {
	d := NewQueueingDriver()
	tools := []model.ToolName{
		model.ToolNavigateTo, model.ToolClickElement, model.ToolInputText, model.ToolExtractData,
	}
	for _, tool := range tools {
		res, err := d.Execute(context.Background(), Action{
			Tool:   tool,
			Params: map[string]any{"url": "https://example.com"},
		})
		require.NoError(t, err)
		require.Equal(t, string(tool), res.Output["action"])
		require.Equal(t, "Queued for client-side browser execution", res.Output["note"])
		require.Equal(t, model.StrategySemantic, res.Strategy)
	}
}

func TestQueueingDriverHonorsSelectorStrategyParam(t *testing.T) {
	d := NewQueueingDriver()
	res, err := d.Execute(context.Background(), Action{
		Tool:   model.ToolClickElement,
		Params: map[string]any{"selector_strategy": "coordinate"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StrategyCoordinate, res.Strategy)
}
