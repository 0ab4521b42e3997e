package payments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/pkg/cache"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	event      *Event
	verifyErr  error
	resolveErr error
}

func (f *fakeGateway) CreateSession(context.Context, SessionRequest) (*Session, error) {
	return &Session{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil
}

func (f *fakeGateway) VerifyWebhook([]byte, string) (*Event, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.event, nil
}

func (f *fakeGateway) ResolveBookingID(context.Context, *Event) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.event.Metadata["bookingId"], nil
}

type fakeConfirmer struct {
	calls []string
	errs  []error
}

func (f *fakeConfirmer) OnPaymentConfirmed(_ context.Context, id string) error {
	f.calls = append(f.calls, id)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func paidEvent(id string) *Event {
	return &Event{ID: id, Type: EventPaymentSucceeded, PaymentIntentID: "pi_1", Metadata: map[string]string{"bookingId": "b-1"}}
}

func TestHandleWebhook(t *testing.T) {
	errTransient := errors.New("db down")

	tests := []struct {
		name       string
		gateway    *fakeGateway
		confirmErr []error
		wantErr    error
		wantCalls  int
		wantKept   bool
	}{
		{"confirms booking", &fakeGateway{event: paidEvent("evt_1")}, nil, nil, 1, true},
		{"bad signature", &fakeGateway{verifyErr: apperr.ErrAuthenticationFailure}, nil, apperr.ErrAuthenticationFailure, 0, false},
		{"unknown booking is swallowed", &fakeGateway{event: paidEvent("evt_1")}, []error{apperr.ErrUnknownBooking}, nil, 1, true},
		{"transient failure", &fakeGateway{event: paidEvent("evt_1")}, []error{errTransient}, errTransient, 1, false},
		{"missing booking reference is acknowledged", &fakeGateway{event: paidEvent("evt_1"), resolveErr: ErrBookingReference}, nil, nil, 0, true},
		{"transient resolve failure", &fakeGateway{event: paidEvent("evt_1"), resolveErr: errTransient}, nil, errTransient, 0, false},
		{"undecodable event is acknowledged", &fakeGateway{verifyErr: fmt.Errorf("%w: bad intent", ErrMalformedEvent)}, nil, nil, 0, false},
		{"other event ignored", &fakeGateway{event: &Event{ID: "evt_1", Type: "charge.refunded"}}, nil, nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewMemory()
			confirmer := &fakeConfirmer{errs: tt.confirmErr}
			r := NewReconciler(tt.gateway, confirmer, store, logger.Discard())

			err := r.HandleWebhook(context.Background(), []byte("{}"), "sig")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, confirmer.calls, tt.wantCalls)
			assert.Equal(t, tt.wantKept, store.Exists(context.Background(), constants.BuildWebhookEventKey("evt_1")))
		})
	}
}

func TestHandleWebhook_DuplicateDelivery(t *testing.T) {
	confirmer := &fakeConfirmer{}
	r := NewReconciler(&fakeGateway{event: paidEvent("evt_dup")}, confirmer, cache.NewMemory(), logger.Discard())

	require.NoError(t, r.HandleWebhook(context.Background(), nil, ""))
	require.NoError(t, r.HandleWebhook(context.Background(), nil, ""))
	assert.Equal(t, []string{"b-1"}, confirmer.calls)
}

func TestHandleWebhook_RetryAfterFailure(t *testing.T) {
	confirmer := &fakeConfirmer{errs: []error{errors.New("timeout")}}
	r := NewReconciler(&fakeGateway{event: paidEvent("evt_retry")}, confirmer, cache.NewMemory(), logger.Discard())

	require.Error(t, r.HandleWebhook(context.Background(), nil, ""))
	require.NoError(t, r.HandleWebhook(context.Background(), nil, ""))
	assert.Len(t, confirmer.calls, 2)
}

func TestHandleWebhook_NoCache(t *testing.T) {
	confirmer := &fakeConfirmer{}
	r := NewReconciler(&fakeGateway{event: paidEvent("evt_1")}, confirmer, nil, logger.Discard())

	require.NoError(t, r.HandleWebhook(context.Background(), nil, ""))
	require.NoError(t, r.HandleWebhook(context.Background(), nil, ""))
	assert.Len(t, confirmer.calls, 2)
}

func TestWebhookController_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		gateway  *fakeGateway
		errs     []error
		wantCode int
	}{
		{"processed", &fakeGateway{event: paidEvent("evt_1")}, nil, http.StatusOK},
		{"bad signature", &fakeGateway{verifyErr: apperr.ErrAuthenticationFailure}, nil, http.StatusBadRequest},
		{"internal failure", &fakeGateway{event: paidEvent("evt_1")}, []error{errors.New("boom")}, http.StatusInternalServerError},
		{"no booking reference", &fakeGateway{event: paidEvent("evt_1"), resolveErr: ErrBookingReference}, nil, http.StatusOK},
		{"undecodable event", &fakeGateway{verifyErr: fmt.Errorf("%w: bad intent", ErrMalformedEvent)}, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewReconciler(tt.gateway, &fakeConfirmer{errs: tt.errs}, cache.NewMemory(), logger.Discard())
			r := gin.New()
			SetupPaymentRoutes(r.Group("/api/v1"), NewController(rec, logger.Discard()))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(`{"id":"evt_1"}`))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"received":true`)
			}
		})
	}
}
