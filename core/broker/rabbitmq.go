package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends JSON events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Event is one message: a routing key suffix, a correlation id and a JSON-encodable body.
type Event struct {
	// Kind is appended to the configured routing key (e.g. "sync.report.completed").
	Kind          string
	CorrelationID string
	Body          any
}

// RabbitMQ publishes events to a durable topic exchange with publisher confirms.
type RabbitMQ struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewRabbitMQ connects to the broker, declares the exchange and enables confirms.
func NewRabbitMQ(cfg Config, logger *zap.Logger) (*RabbitMQ, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to activate publisher confirms: %w", err)
	}

	logger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.Exchange))

	return &RabbitMQ{cfg: cfg, conn: conn, channel: ch, logger: logger}, nil
}

// Publish sends the event and blocks until the broker confirms it.
func (r *RabbitMQ) Publish(ctx context.Context, event Event) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn.IsClosed() {
		return fmt.Errorf("broker connection is closed")
	}

	deferred, err := r.channel.PublishWithDeferredConfirmWithContext(
		ctx, r.cfg.Exchange, RoutingKey(r.cfg.RoutingKey, event.Kind), false, false, msg)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	acked, err := deferred.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("broker rejected message %s", event.CorrelationID)
	}
	return nil
}

// Close shuts the channel and connection down.
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.channel.Close()
	return r.conn.Close()
}

// NewMessage encodes an event as a persistent JSON publishing.
func NewMessage(event Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event.Body)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to serialize event: %w", err)
	}
	return amqp.Publishing{
		Headers:       amqp.Table{"correlation_id": event.CorrelationID},
		CorrelationId: event.CorrelationID,
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}, nil
}

// RoutingKey joins the base key and the event kind.
func RoutingKey(base, kind string) string {
	switch {
	case kind == "":
		return base
	case base == "":
		return kind
	default:
		return base + "." + kind
	}
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
