package clustering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func seqEvent(session string, seq int64, vec []float64, bucket string) model.SecureEvent {
	return model.SecureEvent{
		SessionFingerprint: session,
		SequenceNumber:     seq,
		IntentVector:       vec,
		TimestampBucket:    bucket,
		IntentLabel:        model.IntentDataEntry,
		IntentConfidence:   0.8,
	}
}

func TestExtractSequencesSkipsShortGroups(t *testing.T) {
	events := []model.SecureEvent{
		seqEvent("s1", 1, []float64{1, 0}, "2026-01-01T00:00:00Z"),
		seqEvent("s1", 2, []float64{1, 0}, "2026-01-01T00:05:00Z"),
	}
	seqs := ExtractSequences(events)
	require.Empty(t, seqs)
}

func TestExtractSequencesBuildsWindows(t *testing.T) {
	events := []model.SecureEvent{
		seqEvent("s1", 1, []float64{1, 0}, "2026-01-01T00:00:00Z"),
		seqEvent("s1", 2, []float64{0, 1}, "2026-01-01T00:05:00Z"),
		seqEvent("s1", 3, []float64{1, 1}, "2026-01-01T00:10:00Z"),
	}
	seqs := ExtractSequences(events)
	require.Len(t, seqs, 1)
	require.Len(t, seqs[0].Events, 3)
	require.Equal(t, []float64{2.0 / 3, 2.0 / 3}, seqs[0].Embedding)
}

func TestExtractSequencesSortsAscendingBySequenceNumber(t *testing.T) {
	events := []model.SecureEvent{
		seqEvent("s1", 3, []float64{1, 0}, "2026-01-01T00:10:00Z"),
		seqEvent("s1", 1, []float64{1, 0}, "2026-01-01T00:00:00Z"),
		seqEvent("s1", 2, []float64{1, 0}, "2026-01-01T00:05:00Z"),
	}
	seqs := ExtractSequences(events)
	require.Len(t, seqs, 1)
	require.Equal(t, int64(1), seqs[0].Events[0].SequenceNumber)
	require.Equal(t, int64(3), seqs[0].Events[2].SequenceNumber)
}

func TestExtractSequencesIgnoresEmptyVectorsInMean(t *testing.T) {
	events := []model.SecureEvent{
		seqEvent("s1", 1, []float64{2, 0}, "2026-01-01T00:00:00Z"),
		seqEvent("s1", 2, nil, "2026-01-01T00:05:00Z"),
		seqEvent("s1", 3, []float64{0, 2}, "2026-01-01T00:10:00Z"),
	}
	seqs := ExtractSequences(events)
	require.Len(t, seqs, 1)
	require.Equal(t, []float64{1, 1}, seqs[0].Embedding)
}
