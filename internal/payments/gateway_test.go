package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test"

func newTestGateway() *StripeGateway {
	return NewStripeGateway(config.PaymentConfig{
		StripeSecretKey:     "sk_test_123",
		StripeWebhookSecret: testWebhookSecret,
		Currency:            "cad",
	})
}

func eventPayload(t *testing.T, id, eventType string, metadata map[string]string) []byte {
	t.Helper()
	return versionedPayload(t, id, eventType, stripe.APIVersion, metadata)
}

func versionedPayload(t *testing.T, id, eventType, apiVersion string, metadata interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": apiVersion,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "pi_123",
				"object":   "payment_intent",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return body
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	return signed.Header
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{12, 1200},
		{12.5, 1250},
		{19.99, 1999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(tt.amount), "amount %v", tt.amount)
	}
}

func TestVerifyWebhook(t *testing.T) {
	g := newTestGateway()
	payload := eventPayload(t, "evt_1", EventPaymentSucceeded, map[string]string{"bookingId": "b-1"})

	event, err := g.VerifyWebhook(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.PaymentIntentID)
	assert.Equal(t, "b-1", event.Metadata["bookingId"])

	_, err = g.VerifyWebhook(payload, sign(payload, "whsec_other"))
	assert.ErrorIs(t, err, apperr.ErrAuthenticationFailure)

	_, err = g.VerifyWebhook(payload, "")
	assert.ErrorIs(t, err, apperr.ErrAuthenticationFailure)
}

func TestVerifyWebhook_OtherEventTypes(t *testing.T) {
	g := newTestGateway()
	payload := eventPayload(t, "evt_2", "checkout.session.completed", nil)

	event, err := g.VerifyWebhook(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Empty(t, event.PaymentIntentID)
}

func TestVerifyWebhook_AnyAPIVersion(t *testing.T) {
	g := newTestGateway()
	payload := versionedPayload(t, "evt_3", EventPaymentSucceeded, "2022-11-15", map[string]string{"bookingId": "b-3"})

	event, err := g.VerifyWebhook(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_3", event.ID)
	assert.Equal(t, "b-3", event.Metadata["bookingId"])
}

func TestVerifyWebhook_Undecodable(t *testing.T) {
	g := newTestGateway()

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("not json")},
		{"intent metadata of wrong type", versionedPayload(t, "evt_4", EventPaymentSucceeded, stripe.APIVersion, "oops")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.VerifyWebhook(tt.payload, sign(tt.payload, testWebhookSecret))
			assert.ErrorIs(t, err, ErrMalformedEvent)
			assert.NotErrorIs(t, err, apperr.ErrAuthenticationFailure)
		})
	}
}

func TestResolveBookingID_FromMetadata(t *testing.T) {
	g := newTestGateway()

	id, err := g.ResolveBookingID(context.Background(), &Event{Metadata: map[string]string{"bookingId": "b-9"}})
	require.NoError(t, err)
	assert.Equal(t, "b-9", id)

	_, err = g.ResolveBookingID(context.Background(), &Event{})
	assert.ErrorIs(t, err, ErrBookingReference)
}
