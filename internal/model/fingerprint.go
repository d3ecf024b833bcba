// Package model holds the shared data-model types that flow between the
// capture, privacy, clustering, and execution packages. Types here carry
// JSON tags but no behavior.
package model

// AriaInfo captures the subset of ARIA attributes the fingerprinter cares about.
type AriaInfo struct {
	Role        string `json:"role,omitempty"`
	Label       string `json:"label,omitempty"`
	DescribedBy string `json:"describedBy,omitempty"`
	Expanded    *bool  `json:"expanded,omitempty"`
	Checked     *bool  `json:"checked,omitempty"`
	Selected    *bool  `json:"selected,omitempty"`
}

// Position is a bounding rect rounded to integer px plus viewport-relative offsets.
type Position struct {
	X    int     `json:"x"`
	Y    int     `json:"y"`
	W    int     `json:"w"`
	H    int     `json:"h"`
	VW   int     `json:"vw"`
	VH   int     `json:"vh"`
	RelX float64 `json:"relX"`
	RelY float64 `json:"relY"`
}

// ElementContext describes an element's immediate DOM neighborhood.
type ElementContext struct {
	ParentTag      string `json:"parentTag,omitempty"`
	ParentRole     string `json:"parentRole,omitempty"`
	ParentText     string `json:"parentText,omitempty"`
	SiblingCount   int    `json:"siblingCount"`
	SiblingIndex   int    `json:"siblingIndex"`
	PrevSiblingTag string `json:"prevSiblingTag,omitempty"`
	NextSiblingTag string `json:"nextSiblingTag,omitempty"`
}

// ElementFingerprint is a stable multi-factor semantic ID for an observed element.
type ElementFingerprint struct {
	Aria        AriaInfo       `json:"aria"`
	TextHash    string         `json:"textHash"`    // 128-bit simhash, lowercase hex
	TextPreview string         `json:"textPreview"` // pre-scrub only, <=200 chars
	Position    Position       `json:"position"`
	DOMPath     []string       `json:"domPath"` // rooted at document root, html excluded
	TagName     string         `json:"tagName"`
	Context     ElementContext `json:"context"`
	InputType   string         `json:"inputType,omitempty"`
	FormID      string         `json:"formId,omitempty"`
}

// ElementSnapshot is the minimal live-element observation the fingerprinter
// needs; it stands in for a real DOM node reference.
type ElementSnapshot struct {
	TagName      string
	Role         string
	AriaLabel    string
	DescribedBy  string
	Expanded     *bool
	Checked      *bool
	Selected     *bool
	DirectText   string // lowercased/trimmed by the caller is not required; fingerprinter normalizes
	Rect         Position
	DOMPath      []string
	InputType    string
	FormID       string
	Detached     bool
	ParentTag    string
	ParentRole   string
	ParentText   string
	SiblingCount int
	SiblingIndex int
	PrevSibling  string
	NextSibling  string
}

// Viewport is the observing window's dimensions.
type Viewport struct {
	Width  int
	Height int
}
