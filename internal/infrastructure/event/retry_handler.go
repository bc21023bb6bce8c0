package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrRetryQueueFull is returned when a failed event cannot be queued for retry
var ErrRetryQueueFull = errors.New("retry queue is full")

// RetryConfig holds configuration for RetryingHandler
type RetryConfig struct {
	// MaxAttempts counts the first delivery; 1 disables retries
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	QueueSize   int
}

// DefaultRetryConfig returns default configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseBackoff: time.Second,
		MaxBackoff:  30 * time.Second,
		QueueSize:   1000,
	}
}

// backoff returns the delay before the given attempt, doubling from BaseBackoff
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.BaseBackoff
	for i := 2; i < attempt && d < c.MaxBackoff; i++ {
		d *= 2
	}
	return min(d, c.MaxBackoff)
}

// RetryStats is a snapshot of retry counters
type RetryStats struct {
	Retried      int64 `json:"retried"`
	Recovered    int64 `json:"recovered"`
	DeadLettered int64 `json:"dead_lettered"`
	Pending      int   `json:"pending"`
}

type retryEntry struct {
	ctx     context.Context
	event   shared.DomainEvent
	attempt int
	due     time.Time
}

// RetryingHandler delivers an event once inline and, when that fails, keeps
// redelivering it in the background with exponential backoff. After
// MaxAttempts the event is logged as dead-lettered and dropped.
type RetryingHandler struct {
	handler shared.EventHandler
	config  RetryConfig
	logger  *zap.Logger
	queue   chan retryEntry

	retried      atomic.Int64
	recovered    atomic.Int64
	deadLettered atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRetryingHandler wraps handler with background retries
func NewRetryingHandler(handler shared.EventHandler, config RetryConfig, logger *zap.Logger) *RetryingHandler {
	defaults := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = defaults.BaseBackoff
	}
	if config.MaxBackoff < config.BaseBackoff {
		config.MaxBackoff = config.BaseBackoff
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	return &RetryingHandler{
		handler: handler,
		config:  config,
		logger:  logger,
		queue:   make(chan retryEntry, config.QueueSize),
	}
}

// EventTypes returns the event types of the wrapped handler
func (h *RetryingHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle delivers the event. A failed delivery is queued for retry and
// Handle returns nil; it returns an error only when retries are disabled
// or the queue is full.
func (h *RetryingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	err := h.handler.Handle(ctx, event)
	if err == nil {
		return nil
	}
	if h.config.MaxAttempts <= 1 {
		h.deadLetter(event, 1, err)
		return err
	}

	entry := retryEntry{
		ctx:     context.WithoutCancel(ctx),
		event:   event,
		attempt: 2,
		due:     time.Now().Add(h.config.backoff(2)),
	}
	if !h.enqueue(entry) {
		h.deadLetter(event, 1, err)
		return errors.Join(ErrRetryQueueFull, err)
	}
	h.logger.Warn("Event delivery failed, queued for retry",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Time("retry_at", entry.due),
		zap.Error(err),
	)
	return nil
}

func (h *RetryingHandler) enqueue(entry retryEntry) bool {
	select {
	case h.queue <- entry:
		return true
	default:
		return false
	}
}

// Start starts the retry worker
func (h *RetryingHandler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	h.wg.Add(1)
	go h.retryLoop(ctx)

	h.logger.Info("Event retry worker started",
		zap.Int("max_attempts", h.config.MaxAttempts),
		zap.Duration("base_backoff", h.config.BaseBackoff),
		zap.Int("queue_size", h.config.QueueSize),
	)
	return nil
}

// Stop stops the retry worker. Events still queued are dropped and logged.
func (h *RetryingHandler) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if pending := len(h.queue); pending > 0 {
			h.logger.Warn("Event retry worker stopped with pending events", zap.Int("pending", pending))
		} else {
			h.logger.Info("Event retry worker stopped")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *RetryingHandler) retryLoop(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-h.queue:
			if !h.waitUntil(ctx, entry.due) {
				// keep it counted as pending for Stop
				h.enqueue(entry)
				return
			}
			h.retry(entry)
		}
	}
}

func (h *RetryingHandler) waitUntil(ctx context.Context, due time.Time) bool {
	delay := time.Until(due)
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (h *RetryingHandler) retry(entry retryEntry) {
	h.retried.Add(1)
	err := h.handler.Handle(entry.ctx, entry.event)
	if err == nil {
		h.recovered.Add(1)
		h.logger.Info("Event delivered after retry",
			zap.String("event_id", entry.event.EventID().String()),
			zap.Int("attempt", entry.attempt),
		)
		return
	}
	if entry.attempt >= h.config.MaxAttempts {
		h.deadLetter(entry.event, entry.attempt, err)
		return
	}

	entry.attempt++
	entry.due = time.Now().Add(h.config.backoff(entry.attempt))
	if !h.enqueue(entry) {
		h.deadLetter(entry.event, entry.attempt-1, err)
	}
}

func (h *RetryingHandler) deadLetter(event shared.DomainEvent, attempts int, err error) {
	h.deadLettered.Add(1)
	h.logger.Error("Event dead-lettered",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
}

// Stats returns a snapshot of the retry counters
func (h *RetryingHandler) Stats() RetryStats {
	return RetryStats{
		Retried:      h.retried.Load(),
		Recovered:    h.recovered.Load(),
		DeadLettered: h.deadLettered.Load(),
		Pending:      len(h.queue),
	}
}

var _ shared.EventHandler = (*RetryingHandler)(nil)
