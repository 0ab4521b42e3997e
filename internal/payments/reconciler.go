package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/pkg/cache"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

// BookingConfirmer moves a pending booking to paid. It must be idempotent.
type BookingConfirmer interface {
	OnPaymentConfirmed(ctx context.Context, bookingID string) error
}

type Reconciler struct {
	gateway   Gateway
	confirmer BookingConfirmer
	cache     cache.Service
	log       *logger.Logger
}

func NewReconciler(gateway Gateway, confirmer BookingConfirmer, c cache.Service, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Reconciler{gateway: gateway, confirmer: confirmer, cache: c, log: log.WithComponent("payments")}
}

// HandleWebhook verifies and applies one provider notification. A nil return
// means the event was applied, had been applied before, or can never be
// applied; only signature failures and transient errors are returned.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := r.gateway.VerifyWebhook(payload, signature)
	if errors.Is(err, ErrMalformedEvent) {
		r.log.WithError(err).Warn("undecodable webhook event acknowledged")
		return nil
	}
	if err != nil {
		return err
	}

	key := constants.BuildWebhookEventKey(event.ID)
	if !r.claimEvent(ctx, key, event.ID) {
		r.log.Info("duplicate webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}

	if err := r.apply(ctx, event); err != nil {
		r.forgetEvent(ctx, key)
		return err
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, event *Event) error {
	if event.Type != EventPaymentSucceeded {
		r.log.Debug("unhandled event type", "type", event.Type)
		return nil
	}

	bookingID, err := r.gateway.ResolveBookingID(ctx, event)
	if errors.Is(err, ErrBookingReference) {
		r.log.Warn("payment without booking reference", "payment_intent", event.PaymentIntentID, "event_id", event.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve booking for %s: %w", event.PaymentIntentID, err)
	}

	if err := r.confirmer.OnPaymentConfirmed(ctx, bookingID); err != nil {
		if errors.Is(err, apperr.ErrUnknownBooking) {
			r.log.Warn("payment for unknown booking", "booking_id", bookingID, "event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to confirm booking %s: %w", bookingID, err)
	}
	return nil
}

// claimEvent reports whether this delivery should be processed. Without a
// working cache every delivery is processed.
func (r *Reconciler) claimEvent(ctx context.Context, key, eventID string) bool {
	if r.cache == nil {
		return true
	}
	ok, err := r.cache.SetNX(ctx, key, eventID, constants.TTL_WEBHOOK_EVENT)
	if err != nil {
		r.log.WithError(err).Warn("webhook dedupe unavailable", "event_id", eventID)
		return true
	}
	return ok
}

func (r *Reconciler) forgetEvent(ctx context.Context, key string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.WithError(err).Warn("failed to clear webhook dedupe key", "key", key)
	}
}
