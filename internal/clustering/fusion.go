package clustering

import (
	"math"
	"strings"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Fuse computes the combined confidence for a cluster (0.6 statistical,
// 0.4 LLM) and reports whether it survives ReviewThreshold.
func Fuse(c Cluster, llmConfidence float64, hasLLMConfidence bool) (combined float64, survives bool) {
	n := len(c.Members)
	stat := statisticalScore(c, n)

	if !hasLLMConfidence {
		llmConfidence = 0.5
	}
	combined = round2(0.6*stat + 0.4*llmConfidence)
	return combined, combined >= ReviewThreshold
}

func statisticalScore(c Cluster, n int) float64 {
	uniqueSeqs := uniqueIntentStrings(c)
	sizeTerm := 0.3 * math.Min(float64(n)/10.0, 1.0)
	consistencyTerm := 0.4 * (1 - (float64(uniqueSeqs-1) / float64(n)))
	confidenceTerm := 0.3 * meanIntentConfidence(c)
	return sizeTerm + consistencyTerm + confidenceTerm
}

// uniqueIntentStrings counts distinct comma-joined intent-label sequences
// among a cluster's members.
func uniqueIntentStrings(c Cluster) int {
	seen := make(map[string]struct{})
	for _, m := range c.Members {
		var labels []string
		for _, ev := range m.Events {
			labels = append(labels, string(ev.IntentLabel))
		}
		seen[strings.Join(labels, ",")] = struct{}{}
	}
	return len(seen)
}

func meanIntentConfidence(c Cluster) float64 {
	var sum float64
	var count int
	for _, m := range c.Members {
		for _, ev := range m.Events {
			sum += ev.IntentConfidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PatternStatusFor returns the Detected Pattern status for a surviving
// combined confidence.
func PatternStatusFor(combined float64) model.PatternStatus {
	if combined >= AutoSuggestThreshold {
		return model.PatternAutoSuggested
	}
	return model.PatternNeedsReview
}
