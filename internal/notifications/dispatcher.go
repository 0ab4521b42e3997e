package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

// Dispatcher sends emails off the request path. Send failures are logged and
// never reach the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		log:      log.WithComponent("notifications"),
	}
}

// Dispatch sends n in the background with its own deadline.
func (d *Dispatcher) Dispatch(n *EmailNotification) {
	if n == nil || n.RecipientEmail == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Send(ctx, n); err != nil {
			d.log.Error("notification send failed",
				"type", n.Type,
				"recipient", n.RecipientEmail,
				"error", err)
			return
		}
		d.log.Debug("notification handed off", "type", n.Type, "recipient", n.RecipientEmail)
	}()
}

// BookingConfirmed renders and dispatches a confirmation email.
func (d *Dispatcher) BookingConfirmed(r Recipient, details BookingDetails) {
	n, err := BookingConfirmedEmail(r, details)
	if err != nil {
		d.log.Error("render booking confirmation", "booking_id", details.BookingID, "error", err)
		return
	}
	d.Dispatch(n)
}

// ShowReminder renders and dispatches a reminder email.
func (d *Dispatcher) ShowReminder(r Recipient, details ReminderDetails) {
	n, err := ShowReminderEmail(r, details)
	if err != nil {
		d.log.Error("render show reminder", "show_id", details.ShowID, "error", err)
		return
	}
	d.Dispatch(n)
}

// NewShow announces a movie to every recipient.
func (d *Dispatcher) NewShow(recipients []Recipient, details NewShowDetails) {
	for _, r := range recipients {
		n, err := NewShowEmail(r, details)
		if err != nil {
			d.log.Error("render new show", "movie_id", details.MovieID, "error", err)
			return
		}
		d.Dispatch(n)
	}
}

// Wait blocks until every dispatched send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
