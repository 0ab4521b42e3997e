package release

import (
	"time"

	"github.com/google/uuid"
)

// Task is the durable deadline of one pending booking. While the row exists
// the booking's seats are held; firing it frees them unless paid.
type Task struct {
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;primaryKey"`
	DueAt     time.Time `json:"due_at" gorm:"not null"`
	Attempts  int       `json:"attempts" gorm:"not null;default:0"`
	LastError string    `json:"last_error" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Task) TableName() string { return "release_tasks" }

// Orphan is a pending booking that lost its task.
type Orphan struct {
	BookingID uuid.UUID
	CreatedAt time.Time
}
