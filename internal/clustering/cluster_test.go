package clustering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func seq(ts time.Time, embed []float64) model.EventSequence {
	return model.EventSequence{Embedding: embed, Timestamp: ts}
}

func TestClusterSequencesGroupsSimilarNearbySequences(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sequences := []model.EventSequence{
		seq(base, []float64{1, 0}),
		seq(base.Add(5*time.Minute), []float64{1, 0}),
		seq(base.Add(10*time.Minute), []float64{1, 0}),
	}
	clusters := ClusterSequences(sequences)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0].Members, 3)
}

func TestClusterSequencesDiscardsSmallClusters(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sequences := []model.EventSequence{
		seq(base, []float64{1, 0}),
		seq(base, []float64{0, 1}),
	}
	clusters := ClusterSequences(sequences)
	require.Empty(t, clusters)
}

func TestClusterSequencesRespectsTemporalWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sequences := []model.EventSequence{
		seq(base, []float64{1, 0}),
		seq(base.Add(31*time.Minute), []float64{1, 0}),
		seq(base.Add(2*time.Minute), []float64{1, 0}),
	}
	clusters := ClusterSequences(sequences)
	require.Len(t, clusters, 0) // first+third form a pair of 2, below min size
}

func TestCosineZeroForEmptyVectors(t *testing.T) {
	require.Equal(t, 0.0, cosine(nil, []float64{1, 0}))
	require.Equal(t, 0.0, cosine([]float64{}, []float64{}))
}
