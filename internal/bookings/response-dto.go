package bookings

import "time"

type ReserveResponse struct {
	BookingID   string    `json:"booking_id"`
	RedirectURL string    `json:"redirect_url"`
	Amount      float64   `json:"amount"`
	Seats       []string  `json:"seats"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type OccupiedSeatsResponse struct {
	ShowID        string   `json:"show_id"`
	OccupiedSeats []string `json:"occupied_seats"`
}

type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
