package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/seats"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMovieNotFound = errors.New("movie not found")

type Repository interface {
	GetMovie(ctx context.Context, id string) (*Movie, error)
	CreateMovie(ctx context.Context, movie *Movie) error
	CreateShows(ctx context.Context, shows []Show) error
	GetShow(ctx context.Context, id uuid.UUID) (*Show, error)
	// LockShow reads the show under a row lock. Call it inside database.WithTx.
	LockShow(ctx context.Context, id uuid.UUID) (*Show, error)
	UpdateSeats(ctx context.Context, id uuid.UUID, occupied seats.SeatMap) error
	ListUpcomingMovies(ctx context.Context, from time.Time) ([]Movie, error)
	ListMovieShows(ctx context.Context, movieID string, from time.Time) ([]Show, error)
	ListUpcomingShows(ctx context.Context, from time.Time) ([]Show, error)
	CountUpcomingShows(ctx context.Context, from time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetMovie(ctx context.Context, id string) (*Movie, error) {
	var movie Movie
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &movie, nil
}

func (r *repository) CreateMovie(ctx context.Context, movie *Movie) error {
	return database.Conn(ctx, r.db).Create(movie).Error
}

func (r *repository) CreateShows(ctx context.Context, shows []Show) error {
	if len(shows) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Create(&shows).Error
}

func (r *repository) GetShow(ctx context.Context, id uuid.UUID) (*Show, error) {
	return r.findShow(database.Conn(ctx, r.db), id)
}

func (r *repository) LockShow(ctx context.Context, id uuid.UUID) (*Show, error) {
	return r.findShow(database.ForUpdate(database.Conn(ctx, r.db)), id)
}

func (r *repository) findShow(q *gorm.DB, id uuid.UUID) (*Show, error) {
	var show Show
	if err := q.Where("id = ?", id).First(&show).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrShowNotFound
		}
		return nil, err
	}
	if show.OccupiedSeats == nil {
		show.OccupiedSeats = seats.SeatMap{}
	}
	return &show, nil
}

func (r *repository) UpdateSeats(ctx context.Context, id uuid.UUID, occupied seats.SeatMap) error {
	result := database.Conn(ctx, r.db).Model(&Show{}).
		Where("id = ?", id).
		Update("occupied_seats", occupied)
	if result.Error != nil {
		return fmt.Errorf("failed to update occupied seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrShowNotFound
	}
	return nil
}

// ListUpcomingMovies returns each movie with a show at or after from,
// ordered by its earliest such show.
func (r *repository) ListUpcomingMovies(ctx context.Context, from time.Time) ([]Movie, error) {
	var movies []Movie
	err := database.Conn(ctx, r.db).
		Table("movies").
		Select("movies.*").
		Joins("JOIN (SELECT movie_id, MIN(show_date_time) AS first_show FROM shows WHERE show_date_time >= ? GROUP BY movie_id) upcoming ON upcoming.movie_id = movies.id", from).
		Order("upcoming.first_show ASC").
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *repository) ListMovieShows(ctx context.Context, movieID string, from time.Time) ([]Show, error) {
	var shows []Show
	err := database.Conn(ctx, r.db).
		Where("movie_id = ? AND show_date_time >= ?", movieID, from).
		Order("show_date_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) ListUpcomingShows(ctx context.Context, from time.Time) ([]Show, error) {
	var shows []Show
	err := database.Conn(ctx, r.db).
		Preload("Movie").
		Where("show_date_time >= ?", from).
		Order("show_date_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) CountUpcomingShows(ctx context.Context, from time.Time) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&Show{}).
		Where("show_date_time >= ?", from).
		Count(&count).Error
	return count, err
}
