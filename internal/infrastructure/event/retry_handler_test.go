package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyHandler fails its first failures calls
type flakyHandler struct {
	mu        sync.Mutex
	failures  int
	calls     int
	delivered []shared.DomainEvent
}

func (h *flakyHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.calls <= h.failures {
		return errors.New("broker unavailable")
	}
	h.delivered = append(h.delivered, event)
	return nil
}

func (h *flakyHandler) EventTypes() []string { return nil }

func (h *flakyHandler) snapshot() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls, len(h.delivered)
}

func fastRetries(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
		QueueSize:   4,
	}
}

func startedRetrier(t *testing.T, inner shared.EventHandler, cfg RetryConfig) *RetryingHandler {
	t.Helper()
	h := NewRetryingHandler(inner, cfg, zap.NewNop())
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { _ = h.Stop(context.Background()) })
	return h
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{BaseBackoff: time.Second, MaxBackoff: 5 * time.Second}

	assert.Equal(t, time.Second, cfg.backoff(2))
	assert.Equal(t, 2*time.Second, cfg.backoff(3))
	assert.Equal(t, 4*time.Second, cfg.backoff(4))
	assert.Equal(t, 5*time.Second, cfg.backoff(5))
	assert.Equal(t, 5*time.Second, cfg.backoff(60))
}

func TestRetryingHandler_FirstDeliverySucceeds(t *testing.T) {
	inner := &flakyHandler{}
	h := startedRetrier(t, inner, fastRetries(3))

	require.NoError(t, h.Handle(context.Background(), unitAssigned("")))

	calls, delivered := inner.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, RetryStats{}, h.Stats())
}

func TestRetryingHandler_RecoversAfterFailures(t *testing.T) {
	inner := &flakyHandler{failures: 2}
	h := startedRetrier(t, inner, fastRetries(5))

	require.NoError(t, h.Handle(context.Background(), unitAssigned("")))

	assert.Eventually(t, func() bool {
		_, delivered := inner.snapshot()
		return delivered == 1
	}, 2*time.Second, 5*time.Millisecond)

	stats := h.Stats()
	assert.Equal(t, int64(2), stats.Retried)
	assert.Equal(t, int64(1), stats.Recovered)
	assert.Equal(t, int64(0), stats.DeadLettered)
}

func TestRetryingHandler_DeadLettersAfterMaxAttempts(t *testing.T) {
	inner := &flakyHandler{failures: 100}
	h := startedRetrier(t, inner, fastRetries(3))

	require.NoError(t, h.Handle(context.Background(), unitAssigned("")))

	assert.Eventually(t, func() bool {
		return h.Stats().DeadLettered == 1
	}, 2*time.Second, 5*time.Millisecond)

	calls, delivered := inner.snapshot()
	assert.Equal(t, 3, calls)
	assert.Zero(t, delivered)
	assert.Equal(t, int64(2), h.Stats().Retried)
}

func TestRetryingHandler_SingleAttemptReturnsError(t *testing.T) {
	inner := &flakyHandler{failures: 1}
	h := NewRetryingHandler(inner, fastRetries(1), zap.NewNop())

	assert.Error(t, h.Handle(context.Background(), unitAssigned("")))
	assert.Equal(t, int64(1), h.Stats().DeadLettered)
}

func TestRetryingHandler_QueueFull(t *testing.T) {
	inner := &flakyHandler{failures: 100}
	cfg := fastRetries(3)
	cfg.QueueSize = 1
	// not started, so nothing drains the queue
	h := NewRetryingHandler(inner, cfg, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), unitAssigned("")))
	err := h.Handle(context.Background(), unitAssigned(""))

	assert.ErrorIs(t, err, ErrRetryQueueFull)
	assert.Equal(t, 1, h.Stats().Pending)
	assert.Equal(t, int64(1), h.Stats().DeadLettered)
}

func TestRetryingHandler_CanceledCallerStillRetried(t *testing.T) {
	inner := &flakyHandler{failures: 1}
	h := startedRetrier(t, inner, fastRetries(3))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.Handle(ctx, unitAssigned("")))
	cancel()

	assert.Eventually(t, func() bool {
		_, delivered := inner.snapshot()
		return delivered == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRetryingHandler_WithIdempotentPublisher(t *testing.T) {
	inner := &flakyHandler{failures: 1}
	idempotent := NewIdempotentHandler(inner, newStore(t), zap.NewNop(), WithIdempotencyScope("broker"))
	h := startedRetrier(t, idempotent, fastRetries(3))
	event := unitAssigned("")

	// the first publish fails and releases its mark; the retry gets through
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Eventually(t, func() bool {
		_, delivered := inner.snapshot()
		return delivered == 1
	}, 2*time.Second, 5*time.Millisecond)

	// redelivery after success is swallowed
	require.NoError(t, h.Handle(context.Background(), event))
	calls, delivered := inner.snapshot()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, int64(1), idempotent.GetMetrics().EventsDuplicate.Load())
}

func TestRetryingHandler_StopWithPendingEvents(t *testing.T) {
	inner := &flakyHandler{failures: 100}
	cfg := fastRetries(3)
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	h := NewRetryingHandler(inner, cfg, zap.NewNop())
	require.NoError(t, h.Start(context.Background()))

	require.NoError(t, h.Handle(context.Background(), unitAssigned("")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.Stop(ctx))
	assert.Equal(t, 1, h.Stats().Pending)
}
