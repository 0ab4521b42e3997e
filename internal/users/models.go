package users

import (
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = constants.RoleUser
	RoleAdmin Role = constants.RoleAdmin
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// Favorite marks a movie the user wants to hear about.
type Favorite struct {
	UserID    uuid.UUID    `json:"user_id" gorm:"primaryKey;type:uuid"`
	MovieID   string       `json:"movie_id" gorm:"primaryKey"`
	Movie     *shows.Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Favorite) TableName() string {
	return "user_favorites"
}

type ToggleFavoriteRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

type ToggleFavoriteResponse struct {
	MovieID   string `json:"movieId"`
	Favorited bool   `json:"favorited"`
}
