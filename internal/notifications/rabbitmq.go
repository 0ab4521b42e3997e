package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

// amqpPublisher is the part of *amqp.Channel the publisher needs.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitNotificationPublisher enqueues emails on a durable RabbitMQ queue.
type RabbitNotificationPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    amqpPublisher
	queue string
}

func NewRabbitNotificationPublisher(url, queue string) (*RabbitNotificationPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &RabbitNotificationPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Send implements Notifier
func (p *RabbitNotificationPublisher) Send(ctx context.Context, notification *EmailNotification) error {
	notification.Status = NotificationStatusQueued
	body, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    notification.ID.String(),
		Type:         string(notification.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *RabbitNotificationPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// RabbitNotificationConsumer drains the queue into the sender, reconnecting
// with exponential backoff when the broker goes away.
type RabbitNotificationConsumer struct {
	url       string
	queue     string
	prefetch  int
	deliverer *deliverer
	log       *logger.Logger
	done      chan struct{}
}

func NewRabbitNotificationConsumer(url, queue string, sender Notifier, maxRetries int, backoff time.Duration, log *logger.Logger) *RabbitNotificationConsumer {
	return &RabbitNotificationConsumer{
		url:       url,
		queue:     queue,
		prefetch:  50,
		deliverer: newDeliverer(sender, maxRetries, backoff, log),
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start runs the reconnect loop in the background until ctx is cancelled.
func (c *RabbitNotificationConsumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		backoff := time.Second
		for ctx.Err() == nil {
			conn, err := amqp.Dial(c.url)
			if err != nil {
				c.log.Warn("rabbitmq dial failed", "error", err, "retry_in", backoff)
				if !sleepCtx(ctx, backoff) {
					return
				}
				if backoff < 30*time.Second {
					backoff *= 2
				}
				continue
			}
			backoff = time.Second

			err = c.consumeLoop(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("rabbitmq consume loop ended, reconnecting", "error", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return
			}
		}
	}()
}

// Stop waits for the consumer loop to exit after ctx is cancelled.
func (c *RabbitNotificationConsumer) Stop() error {
	<-c.done
	return nil
}

func (c *RabbitNotificationConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn("rabbitmq set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// acknowledger is the part of amqp.Delivery the handler needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *RabbitNotificationConsumer) handle(ctx context.Context, d amqp.Delivery) {
	c.process(ctx, d.Body, d)
}

func (c *RabbitNotificationConsumer) process(ctx context.Context, body []byte, ack acknowledger) {
	if err := c.deliverer.deliver(ctx, body); err != nil {
		c.log.Error("notification dropped", "queue", c.queue, "error", err)
		// no requeue, the deliverer already retried
		_ = ack.Nack(false, false)
		return
	}
	_ = ack.Ack(false)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
