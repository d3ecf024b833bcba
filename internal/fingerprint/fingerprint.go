// Package fingerprint produces stable, multi-factor semantic identifiers for
// observed DOM elements. It is a pure, side-effect-free
// package: given the same (element, viewport) it always returns the same
// ElementFingerprint, and it never panics — a detached element yields a
// best-effort fingerprint with empty parent context instead of an error.
package fingerprint

import (
	"strings"

	"github.com/ghostlabs/ghost-core/internal/model"
)

const textPreviewMax = 200
const parentTextMax = 100

// Fingerprint computes the ElementFingerprint for a live element snapshot
// against the given viewport.
func Fingerprint(el model.ElementSnapshot, vp model.Viewport) model.ElementFingerprint {
	fp := model.ElementFingerprint{
		TagName:   strings.ToLower(el.TagName),
		TextHash:  textHash(el.DirectText),
		DOMPath:   domPath(el),
		InputType: inputType(el),
		FormID:    el.FormID,
		Aria: model.AriaInfo{
			Role:        el.Role,
			Label:       el.AriaLabel,
			DescribedBy: el.DescribedBy,
			Expanded:    el.Expanded,
			Checked:     el.Checked,
			Selected:    el.Selected,
		},
		TextPreview: truncate(el.DirectText, textPreviewMax),
		Position:    position(el.Rect, vp),
	}

	if el.Detached {
		// Best-effort: no parent context for a detached element.
		fp.Context = model.ElementContext{}
		return fp
	}

	fp.Context = model.ElementContext{
		ParentTag:      el.ParentTag,
		ParentRole:     el.ParentRole,
		ParentText:     truncate(el.ParentText, parentTextMax),
		SiblingCount:   el.SiblingCount,
		SiblingIndex:   el.SiblingIndex,
		PrevSiblingTag: el.PrevSibling,
		NextSiblingTag: el.NextSibling,
	}
	return fp
}

// domPath walks the supplied path (already ordered root→element by the
// capture surface) and emits "tag[role=...]" when a role is present, else
// "tag", excluding <html>. The input DOMPath is expected as a
// list of "tag" or "tag|role" tokens produced by the capture surface; when
// empty, a single-element fallback rooted at the tag itself is returned so
// the invariant "domPath is non-empty" always holds.
func domPath(el model.ElementSnapshot) []string {
	if len(el.DOMPath) == 0 {
		return []string{strings.ToLower(el.TagName)}
	}
	out := make([]string, 0, len(el.DOMPath))
	for _, tok := range el.DOMPath {
		tag, role, _ := strings.Cut(tok, "|")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "html" {
			continue
		}
		if role != "" {
			out = append(out, tag+"[role="+role+"]")
		} else {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return []string{strings.ToLower(el.TagName)}
	}
	return out
}

func position(r model.Position, vp model.Viewport) model.Position {
	pos := model.Position{
		X: round(r.X), Y: round(r.Y),
		W: round(r.W), H: round(r.H),
		VW: vp.Width, VH: vp.Height,
	}
	if vp.Width > 0 {
		pos.RelX = clamp01(float64(r.X) / float64(vp.Width))
	}
	if vp.Height > 0 {
		pos.RelY = clamp01(float64(r.Y) / float64(vp.Height))
	}
	return pos
}

func round(v int) int { return v } // Position fields already arrive as integer px from the capture surface

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// inputType derives the normalized input type descriptor.
func inputType(el model.ElementSnapshot) string {
	switch strings.ToLower(el.TagName) {
	case "input":
		if el.InputType != "" {
			return strings.ToLower(el.InputType)
		}
		return "text"
	case "select":
		return "select"
	case "textarea":
		return "textarea"
	default:
		return ""
	}
}

// ElementSignature renders "tag[role]@last3PathSegments" for a fingerprint,
// used by the Privacy Pipeline when building a Secure Event.
func ElementSignature(fp model.ElementFingerprint) string {
	sig := fp.TagName
	if fp.Aria.Role != "" {
		sig += "[" + fp.Aria.Role + "]"
	}
	return sig + "@" + strings.Join(last(fp.DOMPath, 3), ">")
}

func last(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// StructuralHash is the 8-hex FNV-1a hash over domPath+tagName.
func StructuralHash(fp model.ElementFingerprint) string {
	return fnv1a32(strings.Join(fp.DOMPath, ">") + ":" + fp.TagName)
}
