// Package transmitter implements the Event Transmitter: the
// exclusive owner of an in-memory buffer, a failed-batch queue, and
// per-minute rate counters for one device. Flush can run from Run's ticker
// and from goroutines started by Enqueue, so the buffer and failed queue
// are guarded by a mutex and the totals are atomics; the failed-batch disk
// queue persists through atomic temp-file-then-rename writes.
package transmitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Config holds the Transmitter's overridable tunables.
type Config struct {
	Endpoint          string
	APIKey            string
	DeviceFingerprint string
	MaxBatchSize      int
	FlushInterval     time.Duration
	MaxRetries        int
	RetryBase         time.Duration
	PerMinuteLimit    int
	StorageDir        string // empty disables failed-batch disk persistence
}

// DefaultConfig returns the standard tunables with endpoint/apiKey unset.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:   100,
		FlushInterval:  10 * time.Second,
		MaxRetries:     3,
		RetryBase:      1 * time.Second,
		PerMinuteLimit: 1000,
	}
}

// Stats is a point-in-time snapshot of the transmitter's counters.
type Stats struct {
	TotalSent        int64
	TotalFailed      int64
	TotalDropped     int64
	TotalBatches     int64
	BufferSize       int
	FailedBatchCount int
	EventsThisMinute int64
}

// Transmitter is the single owner of its buffer and failed-batch queue; all
// mutation happens under mu except the atomic counters, which GetStats()
// reads without blocking the owner.
type Transmitter struct {
	cfg    Config
	client *http.Client

	mu       sync.Mutex
	buffer   []model.SecureEvent
	failed   []model.SecureEventBatch
	flushing bool

	minuteLimiter *rate.Limiter

	totalSent    atomic.Int64
	totalFailed  atomic.Int64
	totalDropped atomic.Int64
	totalBatches atomic.Int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Transmitter and restores any failed batches persisted
// from a previous process.
func New(cfg Config) *Transmitter {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if cfg.PerMinuteLimit <= 0 {
		cfg.PerMinuteLimit = 1000
	}

	t := &Transmitter{
		cfg:           cfg,
		client:        &http.Client{Timeout: 30 * time.Second},
		minuteLimiter: rate.NewLimiter(rate.Limit(float64(cfg.PerMinuteLimit)/60.0), cfg.PerMinuteLimit),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	if cfg.StorageDir != "" {
		restored, err := loadFailedBatches(cfg.StorageDir)
		if err != nil {
			slog.Warn("transmitter: failed to restore failed-batch queue", "error", err)
		} else if len(restored) > 0 {
			t.failed = restored
			clearFailedBatches(cfg.StorageDir)
		}
	}

	return t
}

// Run starts the periodic flush loop; it returns once Shutdown is called.
func (t *Transmitter) Run() {
	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()
	defer close(t.doneCh)

	for {
		select {
		case <-ticker.C:
			t.Flush(context.Background())
		case <-t.stopCh:
			t.Flush(context.Background())
			t.persist()
			return
		}
	}
}

// Shutdown stops the flush loop after a final flush and persist.
func (t *Transmitter) Shutdown() {
	close(t.stopCh)
	<-t.doneCh
}

// Enqueue appends event to the buffer, dropping and counting it if the
// device has exceeded perMinuteLimit events this minute. If the
// buffer reaches maxBatchSize, an async flush is triggered.
func (t *Transmitter) Enqueue(ev model.SecureEvent) {
	if !t.minuteLimiter.Allow() {
		t.totalDropped.Add(1)
		return
	}

	t.mu.Lock()
	t.buffer = append(t.buffer, ev)
	shouldFlush := len(t.buffer) >= t.cfg.MaxBatchSize
	t.mu.Unlock()

	if shouldFlush {
		go t.Flush(context.Background())
	}
}

// Flush drains up to maxBatchSize buffered events into one batch, sends it,
// then attempts to drain the failed-batch queue. A no-op if
// already flushing or the buffer is empty.
func (t *Transmitter) Flush(ctx context.Context) {
	t.mu.Lock()
	if t.flushing || len(t.buffer) == 0 {
		t.mu.Unlock()
		return
	}
	t.flushing = true
	n := len(t.buffer)
	if n > t.cfg.MaxBatchSize {
		n = t.cfg.MaxBatchSize
	}
	events := make([]model.SecureEvent, n)
	copy(events, t.buffer[:n])
	t.buffer = t.buffer[n:]
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.flushing = false
		t.mu.Unlock()
	}()

	batch := model.SecureEventBatch{
		Events:            events,
		DeviceFingerprint: t.cfg.DeviceFingerprint,
		BatchID:           uuid.NewString(),
		SentAt:            time.Now().UTC().Format(time.RFC3339),
	}
	t.sendBatch(ctx, batch, 0)
	t.drainFailed(ctx)
}

// drainFailed attempts to resend every batch currently in the failed queue.
// With no endpoint configured nothing can be resent, so the queue is left
// as it is.
func (t *Transmitter) drainFailed(ctx context.Context) {
	if t.cfg.Endpoint == "" {
		return
	}
	t.mu.Lock()
	pending := t.failed
	t.failed = nil
	t.mu.Unlock()

	for _, b := range pending {
		t.sendBatch(ctx, b, 0)
	}
}

// sendBatch POSTs batch to cfg.Endpoint and applies the retry state
// machine: 200/202 succeeds; 429 retries after Retry-After seconds
// with the minute counter unchanged; 5xx retries with exponential backoff up
// to maxRetries; everything else (and no endpoint configured) queues the
// batch to the failed queue and persists it.
func (t *Transmitter) sendBatch(ctx context.Context, batch model.SecureEventBatch, retry int) {
	if t.cfg.Endpoint == "" {
		t.queueFailed(batch)
		return
	}

	body, err := json.Marshal(batch)
	if err != nil {
		slog.Error("transmitter: marshal batch failed", "error", err)
		t.queueFailed(batch)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		t.queueFailed(batch)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("X-Ghost-Batch-Id", batch.BatchID)
	req.Header.Set("X-Ghost-Device", batch.DeviceFingerprint)

	resp, err := t.client.Do(req)
	if err != nil {
		t.retryOrFail(ctx, batch, retry, 0, true)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == 200 || resp.StatusCode == 202:
		t.totalSent.Add(int64(len(batch.Events)))
		t.totalBatches.Add(1)
	case resp.StatusCode == 429:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		time.Sleep(retryAfter)
		t.sendBatch(ctx, batch, retry) // 429 does not consume retry budget
	case resp.StatusCode >= 500:
		t.retryOrFail(ctx, batch, retry, resp.StatusCode, false)
	default:
		t.queueFailed(batch)
	}
}

func (t *Transmitter) retryOrFail(ctx context.Context, batch model.SecureEventBatch, retry, status int, networkErr bool) {
	if retry < t.cfg.MaxRetries {
		backoff := t.cfg.RetryBase * time.Duration(1<<uint(retry))
		time.Sleep(backoff)
		t.sendBatch(ctx, batch, retry+1)
		return
	}
	if networkErr {
		slog.Warn("transmitter: network error, retry budget exhausted", "batchId", batch.BatchID)
	} else {
		slog.Warn("transmitter: server error, retry budget exhausted", "batchId", batch.BatchID, "status", status)
	}
	t.queueFailed(batch)
}

func (t *Transmitter) queueFailed(batch model.SecureEventBatch) {
	t.totalFailed.Add(int64(len(batch.Events)))
	t.mu.Lock()
	t.failed = append(t.failed, batch)
	if len(t.failed) > maxFailedBatches {
		t.failed = t.failed[len(t.failed)-maxFailedBatches:]
	}
	t.mu.Unlock()
	t.persist()
}

func (t *Transmitter) persist() {
	if t.cfg.StorageDir == "" {
		return
	}
	t.mu.Lock()
	snapshot := make([]model.SecureEventBatch, len(t.failed))
	copy(snapshot, t.failed)
	t.mu.Unlock()

	if err := saveFailedBatches(t.cfg.StorageDir, snapshot); err != nil {
		slog.Error("transmitter: failed to persist failed-batch queue", "error", err)
	}
}

// GetStats returns a snapshot of the Transmitter's counters.
func (t *Transmitter) GetStats() Stats {
	t.mu.Lock()
	bufSize := len(t.buffer)
	failedCount := len(t.failed)
	t.mu.Unlock()

	return Stats{
		TotalSent:        t.totalSent.Load(),
		TotalFailed:      t.totalFailed.Load(),
		TotalDropped:     t.totalDropped.Load(),
		TotalBatches:     t.totalBatches.Load(),
		BufferSize:       bufSize,
		FailedBatchCount: failedCount,
		EventsThisMinute: int64(t.cfg.PerMinuteLimit) - int64(t.minuteLimiter.Tokens()),
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return time.Second
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}
