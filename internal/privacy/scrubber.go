// Package privacy implements the on-device privacy boundary: PII scrubbing
// (component B), differential-privacy noise and hashing (component D), and
// the pipeline that orchestrates both plus intent encoding into a Secure
// Event (component E).
//
// The scrubber is a compiled slice of {regex, kind} pairs evaluated in
// priority order, with overlapping matches resolved by keeping the longer
// (ties: the earlier) match. There is no AI-assisted tier — the privacy
// boundary must be fully deterministic.
package privacy

import (
	"regexp"
	"sort"
	"strings"
)

// EntityKind classifies a detected PII span.
type EntityKind string

const (
	EntityEmail      EntityKind = "EMAIL"
	EntityPhone      EntityKind = "PHONE"
	EntitySSN        EntityKind = "SSN"
	EntityCreditCard EntityKind = "CREDIT_CARD"
	EntityIPAddress  EntityKind = "IP_ADDRESS"
	EntityAuthToken  EntityKind = "AUTH_TOKEN"
	EntityDOB        EntityKind = "DOB"
)

// Entity is one detected PII span within a text.
type Entity struct {
	Kind  EntityKind
	Start int
	End   int
	Value string
}

type pattern struct {
	re   *regexp.Regexp
	kind EntityKind
}

// patterns is the ordered detector table. Order does not encode priority
// for overlap resolution (that's decided by span length / start offset);
// order only affects scan cost.
var patterns = []pattern{
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), EntityEmail},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), EntitySSN},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), EntityCreditCard},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`), EntityPhone},
	{regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)\b`), EntityIPAddress},
	{regexp.MustCompile(`(?i)\b(?:bearer|api[_\-]?key|token|secret|password|passwd|auth)\b\s*[:=]?\s*[A-Za-z0-9._\-]{6,}`), EntityAuthToken},
	{regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/\-](?:0?[1-9]|[12]\d|3[01])[/\-](?:19|20)\d{2}\b`), EntityDOB},
}

// Scrubber detects and replaces PII substrings with stable, session-scoped
// tokens "[TYPE_N]" assigned in first-seen order per distinct normalized
// value.
type Scrubber struct {
	counters map[EntityKind]int
	assigned map[string]string // normalized value -> assigned token
}

// NewScrubber constructs an empty, freshly-counted Scrubber.
func NewScrubber() *Scrubber {
	return &Scrubber{
		counters: make(map[EntityKind]int),
		assigned: make(map[string]string),
	}
}

// Reset zeros the counter table.
func (s *Scrubber) Reset() {
	s.counters = make(map[EntityKind]int)
	s.assigned = make(map[string]string)
}

// normalize lowercases and strips spaces/dashes/dots for stable-token keying.
func normalize(v string) string {
	v = strings.ToLower(v)
	v = strings.NewReplacer(" ", "", "-", "", ".", "").Replace(v)
	return v
}

// Detect returns every non-overlapping PII span in text, longest-match-wins
// on overlap, earliest-start-wins on ties. Malformed/empty
// input never raises; it simply yields no entities.
func (s *Scrubber) Detect(text string) []Entity {
	if text == "" {
		return nil
	}
	var all []Entity
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			all = append(all, Entity{Kind: p.kind, Start: loc[0], End: loc[1], Value: text[loc[0]:loc[1]]})
		}
	}
	return resolveOverlaps(all)
}

// resolveOverlaps keeps, among overlapping spans, the longer one; ties keep
// the earlier (lower Start) one.
func resolveOverlaps(entities []Entity) []Entity {
	if len(entities) == 0 {
		return nil
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Start != entities[j].Start {
			return entities[i].Start < entities[j].Start
		}
		return (entities[i].End - entities[i].Start) > (entities[j].End - entities[j].Start)
	})

	var kept []Entity
	for _, e := range entities {
		overlapIdx := -1
		for i, k := range kept {
			if e.Start < k.End && k.Start < e.End {
				overlapIdx = i
				break
			}
		}
		if overlapIdx == -1 {
			kept = append(kept, e)
			continue
		}
		k := kept[overlapIdx]
		eLen, kLen := e.End-e.Start, k.End-k.Start
		if eLen > kLen || (eLen == kLen && e.Start < k.Start) {
			kept[overlapIdx] = e
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// ContainsPII reports whether text contains any detectable PII entity.
func (s *Scrubber) ContainsPII(text string) bool {
	return len(s.Detect(text)) > 0
}

// Scrub replaces every detected PII span with a stable "[TYPE_N]" token,
// assigning N in first-seen order per distinct normalized value within the
// Scrubber's session-scoped counter table. Unrecognized text is
// returned unchanged; malformed input never raises.
func (s *Scrubber) Scrub(text string) string {
	entities := s.Detect(text)
	if len(entities) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, e := range entities {
		b.WriteString(text[last:e.Start])
		b.WriteString(s.token(e.Kind, e.Value))
		last = e.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// ScrubField is like Scrub but additionally treats the entire value as an
// AUTH_TOKEN when fieldKind is a credential-bearing input type (password),
// since credential field content must never reach the boundary verbatim
// regardless of whether it happens to match a structured PII pattern.
func (s *Scrubber) ScrubField(value, fieldKind string) string {
	if strings.EqualFold(fieldKind, "password") && value != "" {
		return s.token(EntityAuthToken, value)
	}
	return s.Scrub(value)
}

func (s *Scrubber) token(kind EntityKind, value string) string {
	key := string(kind) + "\x00" + normalize(value)
	if tok, ok := s.assigned[key]; ok {
		return tok
	}
	s.counters[kind]++
	tok := "[" + string(kind) + "_" + itoa(s.counters[kind]) + "]"
	s.assigned[key] = tok
	return tok
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
