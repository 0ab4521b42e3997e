package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

// deliverer is the consumer side shared by the Kafka and RabbitMQ transports:
// decode a queued notification and push it to the real sender with retries.
type deliverer struct {
	sender     Notifier
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func (d *deliverer) deliver(ctx context.Context, payload []byte) error {
	var notification EmailNotification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	notification.Status = NotificationStatusSending
	if err := d.executeWithRetry(ctx, &notification); err != nil {
		notification.MarkFailed(err)
		return err
	}

	notification.MarkSent()
	return nil
}

func (d *deliverer) executeWithRetry(ctx context.Context, notification *EmailNotification) error {
	for attempt := 0; ; attempt++ {
		err := d.sender.Send(ctx, notification)
		if err == nil {
			if attempt > 0 {
				d.log.Info("notification delivered after retries", "id", notification.ID, "retries", attempt)
			}
			return nil
		}

		notification.RetryCount = attempt
		if attempt >= d.maxRetries {
			return fmt.Errorf("deliver %s after %d attempts: %w", notification.ID, attempt+1, err)
		}

		delay := d.backoff * time.Duration(1<<attempt)
		d.log.Warn("notification delivery retry", "id", notification.ID, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
