package shows

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/seats"

	"github.com/google/uuid"
)

// Movie is keyed by its catalog (TMDB) id.
type Movie struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	Title            string    `json:"title" gorm:"not null;size:255"`
	Overview         string    `json:"overview" gorm:"type:text"`
	PosterPath       string    `json:"poster_path" gorm:"size:255"`
	BackdropPath     string    `json:"backdrop_path" gorm:"size:255"`
	ReleaseDate      string    `json:"release_date" gorm:"size:10"`
	OriginalLanguage string    `json:"original_language" gorm:"size:10"`
	Tagline          string    `json:"tagline" gorm:"size:500"`
	Genres           GenreList `json:"genres" gorm:"type:jsonb"`
	Casts            CastList  `json:"casts" gorm:"type:jsonb"`
	VoteAverage      float64   `json:"vote_average"`
	Runtime          int       `json:"runtime"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Movie) TableName() string { return "movies" }

type Show struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieID       string        `json:"movie_id" gorm:"not null;size:32;index"`
	Movie         *Movie        `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;"`
	ShowDateTime  time.Time     `json:"show_date_time" gorm:"not null"`
	ShowPrice     float64       `json:"show_price" gorm:"not null;check:show_price >= 0"`
	OccupiedSeats seats.SeatMap `json:"occupied_seats" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Show) TableName() string { return "shows" }

type GenreList []catalog.Genre

func (l GenreList) Value() (driver.Value, error) { return marshalColumn(l) }

func (l *GenreList) Scan(value interface{}) error { return unmarshalColumn(value, l) }

type CastList []catalog.CastMember

func (l CastList) Value() (driver.Value, error) { return marshalColumn(l) }

func (l *CastList) Scan(value interface{}) error { return unmarshalColumn(value, l) }

func marshalColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type %T", value)
	}
}

// NewMovieFromCatalog copies the catalog fields we persist.
func NewMovieFromCatalog(d *catalog.MovieDetails) *Movie {
	return &Movie{
		ID:               d.ID,
		Title:            d.Title,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		ReleaseDate:      d.ReleaseDate,
		OriginalLanguage: d.OriginalLanguage,
		Tagline:          d.Tagline,
		Genres:           GenreList(d.Genres),
		Casts:            CastList(d.Cast),
		VoteAverage:      d.VoteAverage,
		Runtime:          d.Runtime,
	}
}

// Request DTOs

type ShowInput struct {
	Date string   `json:"date" validate:"required"`
	Time []string `json:"time" validate:"required,min=1,dive,required"`
}

type AddShowsRequest struct {
	MovieID    string      `json:"movieId" validate:"required"`
	ShowsInput []ShowInput `json:"showsInput" validate:"required,min=1,dive"`
	ShowPrice  float64     `json:"showPrice" validate:"gt=0"`
}

// Response DTOs

type ShowSlot struct {
	Time   time.Time `json:"time"`
	ShowID string    `json:"showId"`
}

type MovieShowsResponse struct {
	Movie    *Movie                `json:"movie"`
	DateTime map[string][]ShowSlot `json:"dateTime"`
}

type AddShowsResponse struct {
	MovieID string   `json:"movie_id"`
	Created int      `json:"created"`
	ShowIDs []string `json:"show_ids"`
}

type OccupiedSeatsResponse struct {
	ShowID        string   `json:"show_id"`
	OccupiedSeats []string `json:"occupied_seats"`
}
