// Package intent implements the Intent Encoder: a deterministic
// decision table that classifies a RawEvent into one of twelve closed
// IntentClass labels, plus a deterministic 128-d vector generator. The
// classifier is an ordered, first-match-wins decision table keyed on
// event type, action, and target.
package intent

import (
	"regexp"
	"strings"

	"github.com/ghostlabs/ghost-core/internal/fingerprint"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// Features is the small feature vector mixed into the LCG base vector.
type Features struct {
	ActionIndex      float64
	TagHash          float64
	DOMPathDepth     float64
	RelX             float64
	RelY             float64
	MethodIndex      float64
	NormalizedStatus float64
}

// Result is the outcome of classifying one RawEvent.
type Result struct {
	Label      model.IntentClass
	Confidence float64
	Features   Features
}

var authURLRe = regexp.MustCompile(`(?i)auth|login|token`)
var commURLRe = regexp.MustCompile(`(?i)message|email|send`)
var searchURLRe = regexp.MustCompile(`(?i)search|query`)
var exportURLRe = regexp.MustCompile(`(?i)export|download`)

// Classify applies the decision table in order, first match wins.
func Classify(ev model.RawEvent, vp model.Viewport) Result {
	switch ev.EventType {
	case model.EventUserInt:
		if p, ok := ev.Payload.(*model.UserIntPayload); ok {
			return classifyUserInt(p, vp)
		}
	case model.EventDOMMutation:
		if p, ok := ev.Payload.(*model.DOMMutationPayload); ok {
			return classifyDOMMutation(p)
		}
	case model.EventNetwork:
		if p, ok := ev.Payload.(*model.NetworkPayload); ok {
			return classifyNetwork(p)
		}
	case model.EventError:
		return Result{Label: model.IntentErrorHandling, Confidence: 0.90}
	}
	return Result{Label: model.IntentUnknown, Confidence: 0.15}
}

func classifyUserInt(p *model.UserIntPayload, vp model.Viewport) Result {
	action := strings.ToLower(p.Action)
	fp := fingerprint.Fingerprint(p.Element, vp)
	feat := Features{
		ActionIndex:  actionIndex(action),
		TagHash:      tagHashFeature(p.Element.TagName),
		DOMPathDepth: float64(len(fp.DOMPath)),
		RelX:         fp.Position.RelX,
		RelY:         fp.Position.RelY,
	}

	inputType := strings.ToLower(p.Element.InputType)

	switch {
	case action == "input" && (inputType == "password" || inputType == "email"):
		return Result{Label: model.IntentAuthentication, Confidence: 0.85, Features: feat}
	case action == "input" || action == "paste":
		return Result{Label: model.IntentDataEntry, Confidence: 0.90, Features: feat}
	case action == "navigate":
		return Result{Label: model.IntentNavigation, Confidence: 0.95, Features: feat}
	case action == "click" && p.TargetIsA:
		return Result{Label: model.IntentNavigation, Confidence: 0.85, Features: feat}
	case action == "click" && isButton(p.Element) && p.InsideForm:
		return Result{Label: model.IntentDataEntry, Confidence: 0.80, Features: feat}
	case action == "click" && isButton(p.Element) && !p.InsideForm:
		return Result{Label: model.IntentWorkflowTransition, Confidence: 0.70, Features: feat}
	case action == "click" && (p.IsCheckbox || p.IsRadio):
		return Result{Label: model.IntentConfiguration, Confidence: 0.75, Features: feat}
	case action == "select":
		return Result{Label: model.IntentDataEntry, Confidence: 0.85, Features: feat}
	case action == "copy":
		return Result{Label: model.IntentDataExtraction, Confidence: 0.80, Features: feat}
	case action == "scroll":
		return Result{Label: model.IntentResearch, Confidence: 0.50, Features: feat}
	case action == "focus":
		return Result{Label: model.IntentNavigation, Confidence: 0.40, Features: feat}
	default:
		return Result{Label: model.IntentUnknown, Confidence: 0.20, Features: feat}
	}
}

func isButton(el model.ElementSnapshot) bool {
	return strings.EqualFold(el.TagName, "button") || strings.EqualFold(el.Role, "button")
}

func classifyDOMMutation(p *model.DOMMutationPayload) Result {
	feat := Features{TagHash: tagHashFeature(p.TargetTag)}
	total := p.AddedNodes + p.RemovedNodes
	switch {
	case total > 20:
		return Result{Label: model.IntentNavigation, Confidence: 0.60, Features: feat}
	case p.IsFormControl || p.TargetFormID != "" ||
		strings.EqualFold(p.TargetTag, "input") || strings.EqualFold(p.TargetTag, "textarea") ||
		strings.EqualFold(p.TargetTag, "select"):
		return Result{Label: model.IntentDataEntry, Confidence: 0.50, Features: feat}
	default:
		return Result{Label: model.IntentUnknown, Confidence: 0.15, Features: feat}
	}
}

func classifyNetwork(p *model.NetworkPayload) Result {
	method := strings.ToUpper(p.Method)
	feat := Features{
		MethodIndex:      methodIndex(method),
		NormalizedStatus: float64(p.Status) / 599.0,
	}
	isWrite := method == "POST" || method == "PUT" || method == "PATCH"

	switch {
	case isWrite && authURLRe.MatchString(p.URL):
		return Result{Label: model.IntentAuthentication, Confidence: 0.85, Features: feat}
	case isWrite && commURLRe.MatchString(p.URL):
		return Result{Label: model.IntentCommunication, Confidence: 0.75, Features: feat}
	case isWrite:
		return Result{Label: model.IntentDataEntry, Confidence: 0.70, Features: feat}
	case method == "DELETE":
		return Result{Label: model.IntentWorkflowTransition, Confidence: 0.70, Features: feat}
	case method == "GET" && searchURLRe.MatchString(p.URL):
		return Result{Label: model.IntentResearch, Confidence: 0.70, Features: feat}
	case method == "GET" && exportURLRe.MatchString(p.URL):
		return Result{Label: model.IntentDataExtraction, Confidence: 0.75, Features: feat}
	case p.Status >= 400:
		return Result{Label: model.IntentErrorHandling, Confidence: 0.60, Features: feat}
	default:
		return Result{Label: model.IntentUnknown, Confidence: 0.15, Features: feat}
	}
}

func actionIndex(action string) float64 {
	order := []string{"input", "paste", "navigate", "click", "select", "copy", "scroll", "focus"}
	for i, a := range order {
		if a == action {
			return float64(i)
		}
	}
	return float64(len(order))
}

func methodIndex(method string) float64 {
	order := []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	for i, m := range order {
		if m == method {
			return float64(i)
		}
	}
	return float64(len(order))
}

// tagHashFeature folds the element tag's 8-hex FNV-1a hash into [0,1).
func tagHashFeature(tag string) float64 {
	if tag == "" {
		return 0
	}
	h := fingerprint.StructuralHash(model.ElementFingerprint{TagName: tag, DOMPath: []string{tag}})
	var v uint32
	for i := 0; i < len(h); i++ {
		v = v<<4 | uint32(hexVal(h[i]))
	}
	return float64(v) / float64(^uint32(0))
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}
