package privacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

var testVP = model.Viewport{Width: 1000, Height: 800}

func TestPipelineScrubsPasswordValue(t *testing.T) {
	p := NewPipeline("org1", "device1", "user1")
	ev := model.RawEvent{
		Timestamp: 1_700_000_000_000,
		SessionID: "s1",
		EventType: model.EventUserInt,
		Payload: &model.UserIntPayload{
			Action: "input",
			Element: model.ElementSnapshot{
				TagName:   "input",
				InputType: "password",
				DOMPath:   []string{"body", "form", "input"},
			},
			Value: "hunter2",
		},
		Context: model.RawEventContext{URL: "https://example.com/login?x=1"},
	}

	se := p.Process(ev, testVP, time.Now())
	require.Equal(t, model.IntentAuthentication, se.IntentLabel)
	require.Len(t, se.IntentVector, 128)
	require.NotEmpty(t, se.SessionFingerprint)
	require.Equal(t, int64(1), se.SequenceNumber)

	// Original event must remain untouched by the deep-copy contract.
	up := ev.Payload.(*model.UserIntPayload)
	require.Equal(t, "hunter2", up.Value)
}

func TestPipelineSequenceNumberIsMonotone(t *testing.T) {
	p := NewPipeline("org1", "device1", "user1")
	ev := model.RawEvent{EventType: model.EventError, Payload: &model.ErrorPayload{Message: "boom"}}

	a := p.Process(ev, testVP, time.Now())
	b := p.Process(ev, testVP, time.Now())
	c := p.Process(ev, testVP, time.Now())
	require.Equal(t, int64(1), a.SequenceNumber)
	require.Equal(t, int64(2), b.SequenceNumber)
	require.Equal(t, int64(3), c.SequenceNumber)
}

func TestPipelineResetZerosSequenceAndTokenTable(t *testing.T) {
	p := NewPipeline("org1", "device1", "user1")
	ev := model.RawEvent{EventType: model.EventError, Payload: &model.ErrorPayload{Message: "jane@example.com failed"}}
	p.Process(ev, testVP, time.Now())
	p.Reset()

	se := p.Process(ev, testVP, time.Now())
	require.Equal(t, int64(1), se.SequenceNumber)
}

func TestPipelineHashesURLWithoutLeakingPath(t *testing.T) {
	p := NewPipeline("org1", "device1", "user1")
	ev := model.RawEvent{
		EventType: model.EventNetwork,
		Payload:   &model.NetworkPayload{Method: "GET", URL: "https://api.example.com/search?q=secret"},
		Context:   model.RawEventContext{URL: "https://example.com/dashboard?token=abc"},
	}
	p.Process(ev, testVP, time.Now())
	np := ev.Payload.(*model.NetworkPayload)
	// original untouched
	require.Contains(t, np.URL, "secret")
}

func TestPipelineNeverPopulatesCredentialOrPreviewFields(t *testing.T) {
	p := NewPipeline("org1", "device1", "user1")
	ev := model.RawEvent{
		EventType: model.EventUserInt,
		Payload: &model.UserIntPayload{
			Action: "input",
			Element: model.ElementSnapshot{
				TagName:    "input",
				InputType:  "text",
				DirectText: "my secret text jane@example.com",
				DOMPath:    []string{"body", "input"},
			},
			Value: "some value",
		},
	}
	se := p.Process(ev, testVP, time.Now())
	// SecureEvent has no textPreview/raw-url/credential fields by construction;
	// verify the fields it does carry contain no leaked PII substrings.
	require.NotContains(t, se.ElementSignature, "secret")
	require.NotContains(t, se.ElementSignature, "jane@example.com")
}
