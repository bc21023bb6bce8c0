// Package messaging forwards domain events to RabbitMQ.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"github.com/ryznreal/offers/internal/infrastructure/event"
	"github.com/ryznreal/offers/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// ErrPublisherClosed is returned by Handle after Close
var ErrPublisherClosed = errors.New("messaging: publisher closed")

// Channel is the part of *amqp.Channel the publisher uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Dialer opens a channel to the broker. The returned closer releases the
// underlying connection.
type Dialer func(url string) (Channel, func() error, error)

// DialAMQP is the Dialer backed by amqp091-go
func DialAMQP(url string) (Channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return ch, conn.Close, nil
}

// RabbitMQPublisher publishes every inventory event to a durable topic
// exchange. The routing key is "{prefix}.{event type}".
type RabbitMQPublisher struct {
	cfg        config.MessagingConfig
	serializer *event.EventSerializer
	dial       Dialer
	logger     *zap.Logger

	mu        sync.Mutex
	channel   Channel
	closeConn func() error
	closed    bool
}

// PublisherOption configures a RabbitMQPublisher
type PublisherOption func(*RabbitMQPublisher)

// WithDialer replaces how the broker connection is opened
func WithDialer(d Dialer) PublisherOption {
	return func(p *RabbitMQPublisher) {
		p.dial = d
	}
}

// NewRabbitMQPublisher connects to the broker and declares the exchange
func NewRabbitMQPublisher(cfg config.MessagingConfig, serializer *event.EventSerializer, zapLogger *zap.Logger, opts ...PublisherOption) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{
		cfg:        cfg,
		serializer: serializer,
		dial:       DialAMQP,
		logger:     zapLogger.Named("rabbitmq"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.connectLocked(); err != nil {
		return nil, err
	}
	p.logger.Info("RabbitMQ publisher ready", zap.String("exchange", cfg.Exchange))
	return p, nil
}

// connectLocked returns the open channel, redialing when the previous one
// was closed by the broker
func (p *RabbitMQPublisher) connectLocked() (Channel, error) {
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}
	p.releaseLocked()

	ch, closeConn, err := p.dial(p.cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if closeConn != nil {
			_ = closeConn()
		}
		return nil, fmt.Errorf("failed to declare exchange %q: %w", p.cfg.Exchange, err)
	}
	p.channel = ch
	p.closeConn = closeConn
	return ch, nil
}

func (p *RabbitMQPublisher) releaseLocked() error {
	var errs []error
	if p.channel != nil {
		if !p.channel.IsClosed() {
			errs = append(errs, p.channel.Close())
		}
		p.channel = nil
	}
	if p.closeConn != nil {
		errs = append(errs, p.closeConn())
		p.closeConn = nil
	}
	return errors.Join(errs...)
}

// EventTypes returns every inventory event type
func (p *RabbitMQPublisher) EventTypes() []string {
	return p.serializer.RegisteredTypes()
}

// RoutingKey returns the routing key for an event type
func (p *RabbitMQPublisher) RoutingKey(eventType string) string {
	if p.cfg.RoutingKeyPrefix == "" {
		return eventType
	}
	return p.cfg.RoutingKeyPrefix + "." + eventType
}

// Handle publishes the event as a persistent JSON message
func (p *RabbitMQPublisher) Handle(ctx context.Context, evt shared.DomainEvent) error {
	body, err := p.serializer.Serialize(evt)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", evt.EventType(), err)
	}

	headers := amqp.Table{
		"event-type":     evt.EventType(),
		"aggregate-type": evt.AggregateType(),
		"aggregate-id":   evt.AggregateID().String(),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		headers["x-request-id"] = requestID
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.EventID().String(),
		Timestamp:    evt.OccurredAt(),
		Type:         evt.EventType(),
		AppId:        inventory.AggregateTypeProject,
		Headers:      headers,
		Body:         body,
	}

	timeout := p.cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	publishCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	ch, err := p.connectLocked()
	if err != nil {
		return err
	}

	key := p.RoutingKey(evt.EventType())
	if err := ch.PublishWithContext(publishCtx, p.cfg.Exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.EventType(), err)
	}
	logger.WithLogger(ctx, p.logger).Debug("Event published",
		zap.String("routing_key", key),
		zap.String("event_id", msg.MessageId),
	)
	return nil
}

// Close closes the channel and connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.releaseLocked()
}

var _ shared.EventHandler = (*RabbitMQPublisher)(nil)
