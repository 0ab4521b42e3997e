package users

import (
	"context"
	"errors"

	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Count(ctx context.Context) (int64, error)
	ListRecipients(ctx context.Context) ([]notifications.Recipient, error)
	RecipientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]notifications.Recipient, error)
	IsFavorite(ctx context.Context, userID uuid.UUID, movieID string) (bool, error)
	AddFavorite(ctx context.Context, fav *Favorite) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID string) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]Favorite, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&User{}).Count(&count).Error
	return count, err
}

func (r *repository) ListRecipients(ctx context.Context) ([]notifications.Recipient, error) {
	var list []User
	if err := database.Conn(ctx, r.db).Select("id", "first_name", "last_name", "email").Find(&list).Error; err != nil {
		return nil, err
	}
	out := make([]notifications.Recipient, 0, len(list))
	for _, u := range list {
		out = append(out, toRecipient(u))
	}
	return out, nil
}

func (r *repository) RecipientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]notifications.Recipient, error) {
	out := make(map[uuid.UUID]notifications.Recipient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []User
	err := database.Conn(ctx, r.db).
		Select("id", "first_name", "last_name", "email").
		Where("id IN ?", ids).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		out[u.ID] = toRecipient(u)
	}
	return out, nil
}

func toRecipient(u User) notifications.Recipient {
	return notifications.Recipient{UserID: u.ID.String(), Email: u.Email, Name: u.FullName()}
}

func (r *repository) IsFavorite(ctx context.Context, userID uuid.UUID, movieID string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&Favorite{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AddFavorite(ctx context.Context, fav *Favorite) error {
	return database.Conn(ctx, r.db).Create(fav).Error
}

func (r *repository) RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID string) error {
	return database.Conn(ctx, r.db).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&Favorite{}).Error
}

func (r *repository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	var list []Favorite
	err := database.Conn(ctx, r.db).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
