package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatUnavailableErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("reserve: %w", &SeatUnavailableError{Seats: []string{"A1", "A2"}})

	assert.True(t, errors.Is(err, ErrSeatUnavailable))

	var seatErr *SeatUnavailableError
	assert.True(t, errors.As(err, &seatErr))
	assert.Equal(t, []string{"A1", "A2"}, seatErr.Seats)
	assert.Contains(t, err.Error(), "A1, A2")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"seat unavailable", &SeatUnavailableError{Seats: []string{"A1"}}, http.StatusConflict},
		{"show not found", fmt.Errorf("lock: %w", ErrShowNotFound), http.StatusNotFound},
		{"gateway", fmt.Errorf("session: %w", ErrGateway), http.StatusBadGateway},
		{"signature", ErrAuthenticationFailure, http.StatusBadRequest},
		{"selection", ErrInvalidSeatSelection, http.StatusBadRequest},
		{"unknown booking", ErrUnknownBooking, http.StatusOK},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
