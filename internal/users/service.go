package users

import (
	"context"
	"fmt"

	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/google/uuid"
)

// MovieLookup is satisfied by shows.Repository.
type MovieLookup interface {
	GetMovie(ctx context.Context, id string) (*shows.Movie, error)
}

// BookingLister is satisfied by bookings.Service.
type BookingLister interface {
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]bookings.Booking, error)
}

type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*User, error)
	Bookings(ctx context.Context, userID uuid.UUID) ([]bookings.Booking, error)
	ToggleFavorite(ctx context.Context, userID uuid.UUID, movieID string) (*ToggleFavoriteResponse, error)
	Favorites(ctx context.Context, userID uuid.UUID) ([]shows.Movie, error)
	CountUsers(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	tx       database.Transactor
	movies   MovieLookup
	bookings BookingLister
}

func NewService(repo Repository, tx database.Transactor, movies MovieLookup, bookings BookingLister) Service {
	if tx == nil {
		tx = database.NoopTransactor{}
	}
	return &service{repo: repo, tx: tx, movies: movies, bookings: bookings}
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) Bookings(ctx context.Context, userID uuid.UUID) ([]bookings.Booking, error) {
	return s.bookings.ListUserBookings(ctx, userID)
}

// ToggleFavorite adds the movie to the user's favorites, or removes it when
// it is already there.
func (s *service) ToggleFavorite(ctx context.Context, userID uuid.UUID, movieID string) (*ToggleFavoriteResponse, error) {
	if _, err := s.movies.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}

	resp := &ToggleFavoriteResponse{MovieID: movieID}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.IsFavorite(ctx, userID, movieID)
		if err != nil {
			return err
		}
		if exists {
			return s.repo.RemoveFavorite(ctx, userID, movieID)
		}
		resp.Favorited = true
		return s.repo.AddFavorite(ctx, &Favorite{UserID: userID, MovieID: movieID})
	})
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return resp, nil
}

func (s *service) Favorites(ctx context.Context, userID uuid.UUID) ([]shows.Movie, error) {
	favs, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	movies := make([]shows.Movie, 0, len(favs))
	for _, f := range favs {
		if f.Movie != nil {
			movies = append(movies, *f.Movie)
		}
	}
	return movies, nil
}

func (s *service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
