package privacy

import (
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/ghostlabs/ghost-core/internal/fingerprint"
	"github.com/ghostlabs/ghost-core/internal/intent"
	"github.com/ghostlabs/ghost-core/internal/model"
)

// Pipeline is the on-device Privacy Pipeline: for each Raw Event
// it deep-copies, scrubs PII, hashes the URL, classifies intent, perturbs the
// vector and timestamp, and emits a Secure Event carrying a monotone
// per-pipeline sequence number. It is constructed once per (orgId, deviceId,
// userId) and is the single owner of its sequence counter and the
// Scrubber's PII token table.
type Pipeline struct {
	orgID    string
	deviceID string
	userID   string

	scrubber *Scrubber
	dpu      *DPU

	mu  sync.Mutex
	seq int64
}

// NewPipeline constructs a Pipeline scoped to one (orgId, deviceId, userId) triple.
func NewPipeline(orgID, deviceID, userID string) *Pipeline {
	return &Pipeline{
		orgID:    orgID,
		deviceID: deviceID,
		userID:   userID,
		scrubber: NewScrubber(),
		dpu:      NewDPU(),
	}
}

// Reset zeros the sequence counter and the Scrubber's PII token table, called on session rotation.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq = 0
	p.scrubber.Reset()
}

// Process runs one Raw Event through the full pipeline and returns the
// resulting Secure Event. now anchors AnonymizeTimestamp's bucketed output to
// a real calendar time (the event's own Timestamp is a monotonic device
// clock reading, not wall-clock).
func (p *Pipeline) Process(ev model.RawEvent, vp model.Viewport, now time.Time) model.SecureEvent {
	scrubbed := p.scrubCopy(ev)

	res := intent.Classify(scrubbed, vp)
	vector := p.dpu.PerturbVector(intent.Vector(res.Label, res.Features))
	bucket := p.dpu.AnonymizeTimestamp(ev.Timestamp, now)

	sessionFP := p.dpu.SessionFingerprint(p.deviceID, p.userID, ev.Timestamp)

	var elementSig, structuralHash string
	if up, ok := scrubbed.Payload.(*model.UserIntPayload); ok {
		fp := fingerprint.Fingerprint(up.Element, vp)
		elementSig = fingerprint.ElementSignature(fp)
		structuralHash = fingerprint.StructuralHash(fp)
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	slog.Debug("privacy pipeline processed event", "orgId", p.orgID, "eventType", ev.EventType, "intentLabel", res.Label, "sequenceNumber", seq)

	return model.SecureEvent{
		SessionFingerprint: sessionFP,
		TimestampBucket:    bucket,
		IntentVector:       vector,
		StructuralHash:     structuralHash,
		OrgID:              p.orgID,
		EventType:          ev.EventType,
		IntentLabel:        res.Label,
		IntentConfidence:   res.Confidence,
		ElementSignature:   elementSig,
		SequenceNumber:     seq,
	}
}

// scrubCopy deep-copies ev and scrubs every PII-bearing field in place on the
// copy: payload.value, payload.message, mutation old/new values, and
// target.textPreview are tokenized; context.URL is hashed down to
// origin+'/'+fnv1a(path+search). The original ev is left
// untouched.
func (p *Pipeline) scrubCopy(ev model.RawEvent) model.RawEvent {
	out := ev
	out.Context.URL = p.hashURL(ev.Context.URL)

	switch src := ev.Payload.(type) {
	case *model.UserIntPayload:
		cp := *src
		cp.Element = scrubElement(p.scrubber, src.Element)
		if cp.Value != "" {
			cp.Value = p.scrubber.ScrubField(cp.Value, cp.Element.InputType)
		}
		out.Payload = &cp
	case *model.DOMMutationPayload:
		cp := *src
		out.Payload = &cp
	case *model.NetworkPayload:
		cp := *src
		cp.Message = p.scrubber.Scrub(cp.Message)
		cp.URL = p.hashURL(cp.URL)
		out.Payload = &cp
	case *model.ErrorPayload:
		cp := *src
		cp.Message = p.scrubber.Scrub(cp.Message)
		cp.Stack = p.scrubber.Scrub(cp.Stack)
		out.Payload = &cp
	}
	return out
}

// scrubElement returns a copy of el with DirectText and ParentText scrubbed
// and TextPreview-bearing fields cleared, since the Secure Event must never
// carry a raw text preview.
func scrubElement(s *Scrubber, el model.ElementSnapshot) model.ElementSnapshot {
	cp := el
	cp.DirectText = s.Scrub(el.DirectText)
	cp.ParentText = s.Scrub(el.ParentText)
	return cp
}

func (p *Pipeline) hashURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Not a well-formed absolute URL; scrub it as free text instead of
		// leaking it unhashed.
		return p.scrubber.Scrub(raw)
	}
	origin := u.Scheme + "://" + u.Host
	pathAndSearch := u.Path
	if u.RawQuery != "" {
		pathAndSearch += "?" + u.RawQuery
	}
	return p.dpu.HashURL(origin, pathAndSearch)
}
