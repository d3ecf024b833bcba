package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

var vp = model.Viewport{Width: 1000, Height: 800}

func userIntEvent(action, inputType string, extra func(*model.UserIntPayload)) model.RawEvent {
	p := &model.UserIntPayload{
		Action: action,
		Element: model.ElementSnapshot{
			TagName:   "input",
			InputType: inputType,
			DOMPath:   []string{"body", "form", "input"},
			Rect:      model.Position{X: 10, Y: 10},
		},
	}
	if extra != nil {
		extra(p)
	}
	return model.RawEvent{EventType: model.EventUserInt, Payload: p}
}

func TestClassifyAuthenticationOnPasswordInput(t *testing.T) {
	ev := userIntEvent("input", "password", nil)
	res := Classify(ev, vp)
	require.Equal(t, model.IntentAuthentication, res.Label)
	require.Equal(t, 0.85, res.Confidence)
}

func TestClassifyDataEntryOnPlainInput(t *testing.T) {
	ev := userIntEvent("input", "text", nil)
	res := Classify(ev, vp)
	require.Equal(t, model.IntentDataEntry, res.Label)
}

func TestClassifyNavigationAction(t *testing.T) {
	ev := userIntEvent("navigate", "", nil)
	res := Classify(ev, vp)
	require.Equal(t, model.IntentNavigation, res.Label)
	require.Equal(t, 0.95, res.Confidence)
}

func TestClassifyClickAnchorIsNavigation(t *testing.T) {
	ev := userIntEvent("click", "", func(p *model.UserIntPayload) { p.TargetIsA = true })
	res := Classify(ev, vp)
	require.Equal(t, model.IntentNavigation, res.Label)
	require.Equal(t, 0.85, res.Confidence)
}

func TestClassifyClickButtonInsideFormIsDataEntry(t *testing.T) {
	ev := userIntEvent("click", "", func(p *model.UserIntPayload) {
		p.Element.TagName = "button"
		p.InsideForm = true
	})
	res := Classify(ev, vp)
	require.Equal(t, model.IntentDataEntry, res.Label)
}

func TestClassifyClickButtonOutsideFormIsWorkflowTransition(t *testing.T) {
	ev := userIntEvent("click", "", func(p *model.UserIntPayload) {
		p.Element.TagName = "button"
		p.InsideForm = false
	})
	res := Classify(ev, vp)
	require.Equal(t, model.IntentWorkflowTransition, res.Label)
}

func TestClassifyCheckboxIsConfiguration(t *testing.T) {
	ev := userIntEvent("click", "", func(p *model.UserIntPayload) { p.IsCheckbox = true })
	res := Classify(ev, vp)
	require.Equal(t, model.IntentConfiguration, res.Label)
}

func TestClassifyDOMMutationLargeIsNavigation(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventDOMMutation, Payload: &model.DOMMutationPayload{AddedNodes: 15, RemovedNodes: 10}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentNavigation, res.Label)
}

func TestClassifyDOMMutationFormControlIsDataEntry(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventDOMMutation, Payload: &model.DOMMutationPayload{TargetTag: "input"}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentDataEntry, res.Label)
}

func TestClassifyNetworkAuthLogin(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventNetwork, Payload: &model.NetworkPayload{Method: "POST", URL: "/api/login"}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentAuthentication, res.Label)
}

func TestClassifyNetworkDeleteIsWorkflowTransition(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventNetwork, Payload: &model.NetworkPayload{Method: "DELETE", URL: "/api/items/1"}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentWorkflowTransition, res.Label)
}

func TestClassifyNetworkErrorStatus(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventNetwork, Payload: &model.NetworkPayload{Method: "GET", URL: "/api/x", Status: 500}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentErrorHandling, res.Label)
}

func TestClassifyErrorEvent(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventError, Payload: &model.ErrorPayload{Message: "boom"}}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentErrorHandling, res.Label)
	require.Equal(t, 0.90, res.Confidence)
}

func TestClassifyUnknownFallback(t *testing.T) {
	ev := model.RawEvent{EventType: model.EventType("bogus")}
	res := Classify(ev, vp)
	require.Equal(t, model.IntentUnknown, res.Label)
}
