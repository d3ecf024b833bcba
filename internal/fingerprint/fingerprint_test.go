package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func sampleElement() model.ElementSnapshot {
	return model.ElementSnapshot{
		TagName:    "input",
		Role:       "textbox",
		AriaLabel:  "Password",
		DirectText: "  Enter Password  ",
		Rect:       model.Position{X: 100, Y: 200, W: 40, H: 20},
		DOMPath:    []string{"html", "body", "form|form", "div", "input|textbox"},
		InputType:  "password",
		FormID:     "login-form",
		ParentTag:  "div",
		ParentRole: "",
		ParentText: "some parent text",
		SiblingCount: 3,
		SiblingIndex: 1,
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	vp := model.Viewport{Width: 1000, Height: 800}
	a := Fingerprint(sampleElement(), vp)
	b := Fingerprint(sampleElement(), vp)
	require.Equal(t, a, b)
}

func TestFingerprintDOMPathExcludesHTML(t *testing.T) {
	fp := Fingerprint(sampleElement(), model.Viewport{Width: 1000, Height: 800})
	require.NotEmpty(t, fp.DOMPath)
	for _, seg := range fp.DOMPath {
		require.NotEqual(t, "html", seg)
	}
	require.Equal(t, "form[role=form]", fp.DOMPath[1])
	require.Equal(t, "input[role=textbox]", fp.DOMPath[len(fp.DOMPath)-1])
}

func TestFingerprintRelativePositionClamped(t *testing.T) {
	el := sampleElement()
	el.Rect = model.Position{X: 5000, Y: -5, W: 10, H: 10}
	fp := Fingerprint(el, model.Viewport{Width: 1000, Height: 800})
	require.Equal(t, 1.0, fp.Position.RelX)
	require.Equal(t, 0.0, fp.Position.RelY)
}

func TestFingerprintInputTypes(t *testing.T) {
	el := sampleElement()
	el.TagName = "select"
	fp := Fingerprint(el, model.Viewport{Width: 1000, Height: 800})
	require.Equal(t, "select", fp.InputType)

	el.TagName = "textarea"
	fp = Fingerprint(el, model.Viewport{Width: 1000, Height: 800})
	require.Equal(t, "textarea", fp.InputType)

	el.TagName = "div"
	fp = Fingerprint(el, model.Viewport{Width: 1000, Height: 800})
	require.Empty(t, fp.InputType)
}

func TestFingerprintDetachedElementNeverPanics(t *testing.T) {
	el := sampleElement()
	el.Detached = true
	el.DOMPath = nil
	require.NotPanics(t, func() {
		fp := Fingerprint(el, model.Viewport{})
		require.NotEmpty(t, fp.DOMPath)
		require.Empty(t, fp.Context.ParentTag)
	})
}

func TestTextHashStableOnNormalization(t *testing.T) {
	a := textHash("  Hello World  ")
	b := textHash("hello world")
	require.Equal(t, a, b)

	c := textHash("something else")
	require.NotEqual(t, a, c)
}

func TestElementSignatureAndStructuralHash(t *testing.T) {
	fp := Fingerprint(sampleElement(), model.Viewport{Width: 1000, Height: 800})
	sig := ElementSignature(fp)
	require.Contains(t, sig, "input")
	require.Contains(t, sig, "@")

	h1 := StructuralHash(fp)
	require.Len(t, h1, 8)

	other := sampleElement()
	other.DOMPath = []string{"html", "body", "input|textbox"}
	fp2 := Fingerprint(other, model.Viewport{Width: 1000, Height: 800})
	h2 := StructuralHash(fp2)
	require.NotEqual(t, h1, h2)
}
