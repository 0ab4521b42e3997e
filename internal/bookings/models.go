package bookings

import (
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/seats"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/google/uuid"
)

// Booking is one user's claim on seats of one show. A pending booking holds
// its seats until paid or until its release task fires.
type Booking struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	ShowID           uuid.UUID      `gorm:"type:uuid;not null" json:"show_id"`
	Amount           float64        `gorm:"not null;check:amount >= 0" json:"amount"`
	BookedSeats      seats.SeatList `gorm:"type:jsonb;not null" json:"booked_seats"`
	IsPaid           bool           `gorm:"not null;default:false" json:"is_paid"`
	PaymentSessionID *string        `gorm:"size:255" json:"-"`
	PaymentLink      string         `gorm:"type:text" json:"payment_link"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Relationships
	Show *shows.Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Holder is the value this booking's seats carry in the show's seat map.
func (b *Booking) Holder() string {
	return b.UserID.String()
}

func (b *Booking) Status() Status {
	if b.IsPaid {
		return StatusPaid
	}
	return StatusPending
}

// Stats summarises paid bookings.
type Stats struct {
	PaidBookings int64   `json:"paid_bookings"`
	Revenue      float64 `json:"revenue"`
}
