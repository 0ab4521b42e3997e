package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Core booking operations
	Create(ctx context.Context, booking *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	// Lock reads the booking under a row lock. Call it inside database.WithTx.
	Lock(ctx context.Context, id uuid.UUID) (*Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkPaid(ctx context.Context, id uuid.UUID) error
	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID, link string) error

	// Listings
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]Booking, error)
	ListPaidForShowsBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return database.Conn(ctx, r.db).Create(booking).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.find(database.Conn(ctx, r.db), id)
}

func (r *repository) Lock(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.find(database.ForUpdate(database.Conn(ctx, r.db)), id)
}

func (r *repository) find(q *gorm.DB, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := q.Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnknownBooking
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&Booking{}).Error
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	result := database.Conn(ctx, r.db).Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paid":            true,
			"payment_link":       "",
			"payment_session_id": nil,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark booking paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrUnknownBooking
	}
	return nil
}

func (r *repository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID, link string) error {
	return database.Conn(ctx, r.db).Model(&Booking{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"payment_session_id": sessionID,
			"payment_link":       link,
		}).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := database.Conn(ctx, r.db).
		Preload("Show.Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ListAll(ctx context.Context, limit, offset int) ([]Booking, error) {
	var bookings []Booking
	err := database.Conn(ctx, r.db).
		Preload("Show.Movie").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

// ListPaidForShowsBetween returns paid bookings whose show starts in (from, to].
func (r *repository) ListPaidForShowsBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	conn := database.Conn(ctx, r.db)
	upcoming := conn.Session(&gorm.Session{NewDB: true}).
		Model(&shows.Show{}).
		Select("id").
		Where("show_date_time > ? AND show_date_time <= ?", from, to)

	var bookings []Booking
	err := conn.
		Preload("Show.Movie").
		Where("is_paid = ? AND show_id IN (?)", true, upcoming).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := database.Conn(ctx, r.db).Model(&Booking{}).
		Select("COUNT(*) AS paid_bookings, COALESCE(SUM(amount), 0) AS revenue").
		Where("is_paid = ?", true).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
