package httpapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestPatternDetectorRejectsMissingOrg(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/pattern-detector", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_ORG", decodeEnvelope(t, rec).Error.Code)
}

// TestPatternDetectorDiscoversRecurringWorkflow checks that three sessions
// each emitting the same five-label sequence with identical intent vectors
// within a 10-minute span surface at least one pattern with occurrences=3
// and confidence >= 0.70.
func TestPatternDetectorDiscoversRecurringWorkflow(t *testing.T) {
	srv, _ := newTestServer(t)
	// Each accepted batch also fires an async clustering pass that may
	// consume a scripted response, so script enough for every possible run.
	lifted := llm.Response{Content: `{"name":"Lead Capture Submission","description":"d","confidence":0.8}`}
	srv.LLM = llm.NewStub(lifted, lifted, lifted, lifted, lifted, lifted, lifted, lifted)
	now := time.Now()

	labels := []model.IntentClass{
		model.IntentNavigation, model.IntentDataEntry, model.IntentDataEntry,
		model.IntentWorkflowTransition, model.IntentWorkflowTransition,
	}

	for _, session := range []string{"s1", "s2", "s3"} {
		var events []model.SecureEvent
		for i, label := range labels {
			events = append(events, secureEvent(session, int64(i+1), label, now))
		}
		rec := doJSON(t, srv, http.MethodPost, "/ingest-events", model.SecureEventBatch{
			DeviceFingerprint: session,
			Events:            events,
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPost, "/pattern-detector", map[string]any{"orgId": "org1"})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data := env.Data.(map[string]any)
	require.GreaterOrEqual(t, int(data["patternsFound"].(float64)), 1)

	patterns := data["patterns"].([]any)
	found := patterns[0].(map[string]any)
	require.EqualValues(t, 3, found["occurrences"])
	require.GreaterOrEqual(t, found["confidence"].(float64), 0.70)
}
