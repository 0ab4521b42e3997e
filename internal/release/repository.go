package release

import (
	"context"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Upsert(ctx context.Context, bookingID uuid.UUID, dueAt time.Time) error
	Delete(ctx context.Context, bookingID uuid.UUID) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]Task, error)
	Reschedule(ctx context.Context, bookingID uuid.UUID, dueAt time.Time, attempts int, lastErr string) error
	ListOrphans(ctx context.Context) ([]Orphan, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, bookingID uuid.UUID, dueAt time.Time) error {
	task := Task{BookingID: bookingID, DueAt: dueAt}
	return database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"due_at": dueAt, "attempts": 0, "last_error": ""}),
		}).
		Create(&task).Error
}

func (r *repository) Delete(ctx context.Context, bookingID uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("booking_id = ?", bookingID).Delete(&Task{}).Error
}

func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	var tasks []Task
	err := database.Conn(ctx, r.db).
		Where("due_at <= ?", now).
		Order("due_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) Reschedule(ctx context.Context, bookingID uuid.UUID, dueAt time.Time, attempts int, lastErr string) error {
	return database.Conn(ctx, r.db).Model(&Task{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]interface{}{
			"due_at":     dueAt,
			"attempts":   attempts,
			"last_error": lastErr,
		}).Error
}

func (r *repository) ListOrphans(ctx context.Context) ([]Orphan, error) {
	var orphans []Orphan
	err := database.Conn(ctx, r.db).
		Table("bookings AS b").
		Select("b.id AS booking_id, b.created_at").
		Joins("LEFT JOIN release_tasks t ON t.booking_id = b.id").
		Where("b.is_paid = ? AND t.booking_id IS NULL", false).
		Scan(&orphans).Error
	return orphans, err
}
