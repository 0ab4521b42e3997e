package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	metadataBookingID     = "bookingId"
)

var (
	ErrBookingReference = errors.New("payment carries no booking reference")
	// ErrMalformedEvent marks a signed payload that can never be decoded.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// SessionRequest describes one checkout for one booking.
type SessionRequest struct {
	BookingID   string
	Amount      float64
	Description string
	// Origin is the storefront the customer came from; redirects go back there.
	Origin string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified provider notification.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
	Metadata        map[string]string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
	ResolveBookingID(ctx context.Context, event *Event) (string, error)
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
	sessionExpiry time.Duration
	defaultOrigin string
	now           func() time.Time
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	return &StripeGateway{
		api:           client.New(cfg.StripeSecretKey, nil),
		webhookSecret: cfg.StripeWebhookSecret,
		currency:      cfg.Currency,
		sessionExpiry: cfg.SessionExpiry,
		defaultOrigin: cfg.ClientOrigin,
		now:           time.Now,
	}
}

// MinorUnits converts a decimal amount to cents.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	origin := strings.TrimRight(req.Origin, "/")
	if origin == "" {
		origin = strings.TrimRight(g.defaultOrigin, "/")
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(origin + "/loading/my-bookings"),
		CancelURL:  stripe.String(origin + "/my-bookings"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(MinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{metadataBookingID: req.BookingID},
		},
		ExpiresAt: stripe.Int64(g.now().Add(g.sessionExpiry).Unix()),
	}
	params.AddMetadata(metadataBookingID, req.BookingID)
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}
	return &Session{ID: session.ID, URL: session.URL}, nil
}

// VerifyWebhook checks the signature and timestamp only. The event's
// api_version is not compared with the library's pinned version.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, g.webhookSecret, webhook.DefaultTolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuthenticationFailure, err)
	}

	var evt stripe.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := &Event{ID: evt.ID, Type: string(evt.Type)}
	if event.Type == EventPaymentSucceeded && evt.Data != nil {
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: payment intent in %s: %v", ErrMalformedEvent, evt.ID, err)
		}
		event.PaymentIntentID = intent.ID
		event.Metadata = intent.Metadata
	}
	return event, nil
}

// ResolveBookingID prefers the intent metadata and falls back to the
// checkout session that produced the intent.
func (g *StripeGateway) ResolveBookingID(ctx context.Context, event *Event) (string, error) {
	if id := event.Metadata[metadataBookingID]; id != "" {
		return id, nil
	}
	if event.PaymentIntentID == "" {
		return "", ErrBookingReference
	}

	params := &stripe.CheckoutSessionListParams{PaymentIntent: stripe.String(event.PaymentIntentID)}
	params.Context = ctx
	it := g.api.CheckoutSessions.List(params)
	for it.Next() {
		if id := it.CheckoutSession().Metadata[metadataBookingID]; id != "" {
			return id, nil
		}
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("failed to list checkout sessions: %w", err)
	}
	return "", ErrBookingReference
}
