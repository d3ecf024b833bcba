package clustering

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
)

const tracerName = "github.com/ghostlabs/ghost-core"

// EventSource reads the most recent n Secure Events for an org, newest
// first. Implemented by internal/store/pg in production
// and an in-memory fake in tests.
type EventSource interface {
	RecentEvents(ctx context.Context, orgID string, n int) ([]model.SecureEvent, error)
}

// PatternSink upserts a Detected Pattern, keyed however the store decides is
// idempotent (e.g. by orgId + sorted intentSequence).
type PatternSink interface {
	UpsertPattern(ctx context.Context, p model.DetectedPattern) error
}

// Run executes the full Temporal Intent Clustering pass for one org:
// window extraction, density clustering, LLM abstraction lifting for the
// first 5 surviving clusters, and confidence-fusion gating. A batch of
// fewer than 3 events produces an empty result, not an error; LLM failures
// skip only the affected cluster.
func Run(ctx context.Context, orgID string, source EventSource, sink PatternSink, port llm.Port) ([]model.DetectedPattern, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "clustering.run",
		trace.WithAttributes(attribute.String("org.id", orgID)))
	defer span.End()

	events, err := source.RecentEvents(ctx, orgID, RecentEventBudget)
	if err != nil {
		return nil, err
	}
	if len(events) < 3 {
		return nil, nil
	}

	sequences := ExtractSequences(events)
	clusters := ClusterSequences(sequences)

	var patterns []model.DetectedPattern
	for i, c := range clusters {
		var abs *Abstraction
		if i < maxLiftedClusters {
			a, err := Lift(ctx, port, c)
			if err != nil {
				slog.Warn("clustering: abstraction lifting failed, skipping cluster", "orgId", orgID, "error", err)
				continue
			}
			if a == nil {
				// Unparseable LLM output: skip the cluster rather than
				// emit a nameless pattern.
				slog.Warn("clustering: abstraction response unparseable, skipping cluster", "orgId", orgID)
				continue
			}
			abs = a
		}

		llmConfidence, hasConfidence := 0.0, false
		if abs != nil && abs.Confidence > 0 {
			llmConfidence, hasConfidence = abs.Confidence, true
		}

		combined, survives := Fuse(c, llmConfidence, hasConfidence)
		if !survives {
			continue
		}

		pattern := buildPattern(orgID, c, combined, abs)
		if pattern.Occurrences < MinClusterSize {
			// Overlapping windows from fewer than 3 distinct sessions are
			// one user repeating themselves, not a recurring workflow.
			continue
		}
		if err := sink.UpsertPattern(ctx, pattern); err != nil {
			slog.Error("clustering: upsert pattern failed", "orgId", orgID, "error", err)
			continue
		}
		patterns = append(patterns, pattern)
	}

	span.SetAttributes(attribute.Int("patterns.found", len(patterns)))
	return patterns, nil
}

func buildPattern(orgID string, c Cluster, combined float64, abs *Abstraction) model.DetectedPattern {
	var intentSeq []model.IntentClass
	var structHashes []string
	seenIntent := make(map[model.IntentClass]struct{})
	seenHash := make(map[string]struct{})
	sessions := make(map[string]struct{})

	var first, last time.Time
	for i, m := range c.Members {
		sessions[m.SessionFingerprint] = struct{}{}
		for _, ev := range m.Events {
			if _, ok := seenIntent[ev.IntentLabel]; !ok {
				seenIntent[ev.IntentLabel] = struct{}{}
				intentSeq = append(intentSeq, ev.IntentLabel)
			}
			if ev.StructuralHash != "" {
				if _, ok := seenHash[ev.StructuralHash]; !ok {
					seenHash[ev.StructuralHash] = struct{}{}
					structHashes = append(structHashes, ev.StructuralHash)
				}
			}
		}
		if i == 0 || m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if i == 0 || m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}

	// A recurrence is one session running the workflow; overlapping windows
	// from the same session do not inflate the count.
	p := model.DetectedPattern{
		ID:               patternID(orgID, intentSeq, structHashes),
		OrgID:            orgID,
		IntentSequence:   intentSeq,
		StructuralHashes: structHashes,
		Occurrences:      len(sessions),
		Confidence:       combined,
		FirstSeen:        first,
		LastSeen:         last,
		Status:           PatternStatusFor(combined),
	}
	if abs != nil {
		p.SuggestedName = abs.Name
		p.SuggestedDescription = abs.Description
	}
	return p
}

// patternID derives a deterministic pattern id from the cluster's identity
// so re-running detection over the same events updates the existing row
// instead of inserting a duplicate.
func patternID(orgID string, intentSeq []model.IntentClass, structHashes []string) string {
	labels := make([]string, len(intentSeq))
	for i, l := range intentSeq {
		labels[i] = string(l)
	}
	sort.Strings(labels)
	hashes := append([]string(nil), structHashes...)
	sort.Strings(hashes)
	key := orgID + "|" + strings.Join(labels, ",") + "|" + strings.Join(hashes, ",")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
