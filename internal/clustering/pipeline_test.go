package clustering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
)

type fakeSource struct{ events []model.SecureEvent }

func (f *fakeSource) RecentEvents(_ context.Context, _ string, _ int) ([]model.SecureEvent, error) {
	return f.events, nil
}

type fakeSink struct{ upserted []model.DetectedPattern }

func (f *fakeSink) UpsertPattern(_ context.Context, p model.DetectedPattern) error {
	f.upserted = append(f.upserted, p)
	return nil
}

func denseEvent(session string, seqN int64, minute int) model.SecureEvent {
	ts := time.Date(2026, 1, 1, 12, minute, 0, 0, time.UTC).Format(time.RFC3339)
	return model.SecureEvent{
		SessionFingerprint: session,
		SequenceNumber:     seqN,
		IntentVector:       []float64{1, 0, 0},
		TimestampBucket:    ts,
		IntentLabel:        model.IntentApproval,
		IntentConfidence:   0.9,
		StructuralHash:     "abcd1234",
	}
}

func TestRunProducesEmptyResultUnderMinimumEvents(t *testing.T) {
	src := &fakeSource{events: []model.SecureEvent{denseEvent("s1", 1, 0)}}
	sink := &fakeSink{}
	patterns, err := Run(context.Background(), "org1", src, sink, llm.NewStub())
	require.NoError(t, err)
	require.Empty(t, patterns)
}

func TestRunEndToEndProducesAutoSuggestedPattern(t *testing.T) {
	var events []model.SecureEvent
	for s := 0; s < 4; s++ {
		session := string(rune('a' + s))
		for i := 0; i < 4; i++ {
			events = append(events, denseEvent(session, int64(i+1), i))
		}
	}
	src := &fakeSource{events: events}
	sink := &fakeSink{}
	stub := llm.NewStub(
		llm.Response{Content: `{"name":"Refund Approval Sweep","description":"d","confidence":0.9}`},
		llm.Response{Content: `{"name":"Refund Approval Sweep","description":"d","confidence":0.9}`},
		llm.Response{Content: `{"name":"Refund Approval Sweep","description":"d","confidence":0.9}`},
		llm.Response{Content: `{"name":"Refund Approval Sweep","description":"d","confidence":0.9}`},
	)

	patterns, err := Run(context.Background(), "org1", src, sink, stub)
	require.NoError(t, err)
	require.NotEmpty(t, patterns)
	for _, p := range patterns {
		require.Equal(t, "org1", p.OrgID)
		require.Contains(t, []model.PatternStatus{model.PatternAutoSuggested, model.PatternNeedsReview}, p.Status)
	}
	require.Len(t, sink.upserted, len(patterns))
}

func TestRunIsolatesLLMFailurePerCluster(t *testing.T) {
	var events []model.SecureEvent
	for s := 0; s < 3; s++ {
		session := string(rune('a' + s))
		for i := 0; i < 4; i++ {
			events = append(events, denseEvent(session, int64(i+1), i))
		}
	}
	src := &fakeSource{events: events}
	sink := &fakeSink{}
	stub := llm.NewStub() // no scripted responses -> every Complete call errors

	patterns, err := Run(context.Background(), "org1", src, sink, stub)
	require.NoError(t, err)
	// Every lift attempt failed, so every cluster is skipped — but Run
	// itself never errors.
	require.Empty(t, patterns)
}
