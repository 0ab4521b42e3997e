// Package apperr defines the booking workflow error taxonomy shared by the
// service layer and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrSeatUnavailable       = errors.New("seat unavailable")
	ErrShowNotFound          = errors.New("show not found")
	ErrGateway               = errors.New("payment gateway error")
	ErrAuthenticationFailure = errors.New("webhook authentication failure")
	ErrUnknownBooking        = errors.New("unknown booking")
	ErrInvalidSeatSelection  = errors.New("invalid seat selection")
)

// SeatUnavailableError carries the seats that were already taken.
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatUnavailableError) Unwrap() error { return ErrSeatUnavailable }

// HTTPStatus maps a workflow error to its response code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSeatUnavailable):
		return http.StatusConflict
	case errors.Is(err, ErrShowNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, ErrAuthenticationFailure), errors.Is(err, ErrInvalidSeatSelection):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownBooking):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
