package clustering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func memberWithLabels(labels ...model.IntentClass) model.EventSequence {
	var events []model.SecureEvent
	for _, l := range labels {
		events = append(events, model.SecureEvent{IntentLabel: l, IntentConfidence: 0.9})
	}
	return model.EventSequence{Events: events}
}

func TestFuseHighConsistencyHighConfidence(t *testing.T) {
	c := Cluster{Members: []model.EventSequence{
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
		memberWithLabels(model.IntentDataEntry, model.IntentNavigation),
	}}
	combined, survives := Fuse(c, 0.95, true)
	require.True(t, survives)
	require.GreaterOrEqual(t, combined, AutoSuggestThreshold)
}

func TestFuseLowConfidenceDropped(t *testing.T) {
	c := Cluster{Members: []model.EventSequence{
		memberWithLabels(model.IntentUnknown),
		memberWithLabels(model.IntentErrorHandling),
		memberWithLabels(model.IntentNavigation),
	}}
	for i := range c.Members {
		c.Members[i].Events[0].IntentConfidence = 0.1
	}
	combined, survives := Fuse(c, 0.1, true)
	require.False(t, survives)
	require.Less(t, combined, ReviewThreshold)
}

func TestFuseDefaultsLLMConfidenceWhenAbsent(t *testing.T) {
	c := Cluster{Members: []model.EventSequence{
		memberWithLabels(model.IntentDataEntry),
		memberWithLabels(model.IntentDataEntry),
		memberWithLabels(model.IntentDataEntry),
	}}
	combinedWithDefault, _ := Fuse(c, 0, false)
	combinedExplicit, _ := Fuse(c, 0.5, true)
	require.Equal(t, combinedExplicit, combinedWithDefault)
}

func TestPatternStatusForThresholds(t *testing.T) {
	require.Equal(t, model.PatternAutoSuggested, PatternStatusFor(0.85))
	require.Equal(t, model.PatternNeedsReview, PatternStatusFor(0.70))
	require.Equal(t, model.PatternNeedsReview, PatternStatusFor(0.84))
}
