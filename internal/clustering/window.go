// Package clustering implements Temporal Intent Clustering:
// sliding-window extraction, greedy density clustering, LLM abstraction
// lifting, and confidence fusion over an organization's recent Secure
// Events.
//
// Each stage is its own pure function over plain slices.
package clustering

import (
	"sort"
	"time"

	"github.com/ghostlabs/ghost-core/internal/model"
)

const (
	// WindowSize bounds how many events one sliding window may span.
	WindowSize = 50
	// RecentEventMultiplier yields N = 5*WINDOW_SIZE events read per org.
	RecentEventMultiplier = 5
	// MinClusterSize is the minimum member count for a cluster to survive.
	MinClusterSize = 3
	// CosineThreshold is the minimum cosine similarity to join a cluster.
	CosineThreshold = 0.75
	// TemporalWindow bounds how far apart two sequences' timestamps may be.
	TemporalWindow = 30 * time.Minute
	// ReviewThreshold is the minimum combined confidence to emit a pattern.
	ReviewThreshold = 0.70
	// AutoSuggestThreshold promotes a pattern straight to auto_suggested.
	AutoSuggestThreshold = 0.85
)

// RecentEventBudget is the number of events read per org (5*WINDOW_SIZE).
const RecentEventBudget = RecentEventMultiplier * WindowSize

// ExtractSequences groups events (assumed newest-first, as returned by
// the store) by sessionFingerprint, sorts each group ascending by
// sequenceNumber, then slides a window of up to WindowSize, step 1, over
// every start index up to max(0, len-3), skipping windows shorter than 3.
func ExtractSequences(events []model.SecureEvent) []model.EventSequence {
	groups := make(map[string][]model.SecureEvent)
	for _, ev := range events {
		groups[ev.SessionFingerprint] = append(groups[ev.SessionFingerprint], ev)
	}

	var out []model.EventSequence
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].SequenceNumber < group[j].SequenceNumber })

		n := len(group)
		lastStart := n - 3
		if lastStart < 0 {
			lastStart = 0
		}
		for start := 0; start <= lastStart; start++ {
			end := start + WindowSize
			if end > n {
				end = n
			}
			window := group[start:end]
			if len(window) < 3 {
				continue
			}
			out = append(out, buildSequence(window))
		}
	}
	return out
}

func buildSequence(window []model.SecureEvent) model.EventSequence {
	embedding := meanVector(window)
	ts, _ := time.Parse(time.RFC3339, window[0].TimestampBucket)
	return model.EventSequence{
		SessionFingerprint: window[0].SessionFingerprint,
		Events:             append([]model.SecureEvent(nil), window...),
		Embedding:          embedding,
		Timestamp:          ts,
	}
}

// meanVector is the element-wise mean of each event's IntentVector,
// ignoring events with an empty vector.
func meanVector(events []model.SecureEvent) []float64 {
	var dim int
	for _, ev := range events {
		if len(ev.IntentVector) > 0 {
			dim = len(ev.IntentVector)
			break
		}
	}
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	count := 0
	for _, ev := range events {
		if len(ev.IntentVector) != dim {
			continue
		}
		for i, v := range ev.IntentVector {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}
