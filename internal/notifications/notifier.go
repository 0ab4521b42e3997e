package notifications

import "context"

// Notifier hands a rendered email to some delivery path. Implementations may
// deliver directly (SMTP, log) or enqueue for a consumer (Kafka, RabbitMQ).
type Notifier interface {
	Send(ctx context.Context, notification *EmailNotification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notification *EmailNotification) error

func (f NotifierFunc) Send(ctx context.Context, notification *EmailNotification) error {
	return f(ctx, notification)
}
