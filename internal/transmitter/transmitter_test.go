package transmitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func testEvent() model.SecureEvent {
	return model.SecureEvent{SessionFingerprint: "abc", IntentLabel: model.IntentNavigation, SequenceNumber: 1}
}

func TestEnqueueTriggersFlushAtMaxBatchSize(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(202)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.MaxBatchSize = 2
	tr := New(cfg)

	tr.Enqueue(testEvent())
	tr.Enqueue(testEvent())

	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, 10*time.Millisecond)
	stats := tr.GetStats()
	require.Equal(t, int64(2), stats.TotalSent)
}

func TestEnqueueDropsWhenOverPerMinuteLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerMinuteLimit = 2
	tr := New(cfg)

	tr.Enqueue(testEvent())
	tr.Enqueue(testEvent())
	tr.Enqueue(testEvent())

	stats := tr.GetStats()
	require.Equal(t, int64(1), stats.TotalDropped)
}

func TestSendBatchQueuesToFailedWhenNoEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	tr := New(cfg)
	tr.Enqueue(testEvent())
	tr.Flush(context.Background())

	stats := tr.GetStats()
	require.Equal(t, 1, stats.FailedBatchCount)
	require.Equal(t, int64(1), stats.TotalFailed)
}

func TestSendBatchRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempt atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempt.Add(1) == 1 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.RetryBase = time.Millisecond
	tr := New(cfg)
	tr.Enqueue(testEvent())
	tr.Flush(context.Background())

	require.Equal(t, int32(2), attempt.Load())
	require.Equal(t, int64(1), tr.GetStats().TotalSent)
}

func TestFailedBatchQueueCapsAtTenNewest(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.StorageDir = dir
	tr := New(cfg)

	for i := 0; i < 15; i++ {
		tr.Enqueue(testEvent())
		tr.Flush(context.Background())
	}

	stats := tr.GetStats()
	require.LessOrEqual(t, stats.FailedBatchCount, maxFailedBatches)
}

func TestRestoreFailedBatchesOnStartup(t *testing.T) {
	dir := t.TempDir()
	err := saveFailedBatches(dir, []model.SecureEventBatch{{BatchID: "b1"}})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.StorageDir = dir
	tr := New(cfg)

	require.Equal(t, 1, tr.GetStats().FailedBatchCount)

	_, err = loadFailedBatches(dir)
	require.NoError(t, err)
}
