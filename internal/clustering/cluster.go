package clustering

import (
	"math"
	"time"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Cluster is one surviving density cluster of EventSequences plus its
// recomputed centroid.
type Cluster struct {
	Members  []model.EventSequence
	Centroid []float64
}

// ClusterSequences runs the greedy single-pass density clustering and
// discards clusters smaller than MinClusterSize.
func ClusterSequences(sequences []model.EventSequence) []Cluster {
	assigned := make([]bool, len(sequences))
	var clusters []Cluster

	for i := range sequences {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []model.EventSequence{sequences[i]}

		for j := i + 1; j < len(sequences); j++ {
			if assigned[j] {
				continue
			}
			if cosine(sequences[i].Embedding, sequences[j].Embedding) >= CosineThreshold &&
				absDuration(sequences[i].Timestamp.Sub(sequences[j].Timestamp)) <= TemporalWindow {
				assigned[j] = true
				members = append(members, sequences[j])
			}
		}

		if len(members) < MinClusterSize {
			continue
		}
		clusters = append(clusters, Cluster{Members: members, Centroid: centroidOf(members)})
	}
	return clusters
}

func centroidOf(members []model.EventSequence) []float64 {
	var dim int
	for _, m := range members {
		if len(m.Embedding) > 0 {
			dim = len(m.Embedding)
			break
		}
	}
	if dim == 0 {
		return nil
	}
	sum := make([]float64, dim)
	count := 0
	for _, m := range members {
		if len(m.Embedding) != dim {
			continue
		}
		for i, v := range m.Embedding {
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

// cosine returns the cosine similarity of a and b; zero-length vectors
// (either side) yield 0.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
