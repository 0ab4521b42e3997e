// Package catalog fetches movie metadata from TMDB.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
)

const maxCast = 10

var (
	ErrMovieNotFound = errors.New("movie not found in catalog")
	ErrUpstream      = errors.New("catalog upstream error")
)

// Provider is what show creation needs from a movie catalog.
type Provider interface {
	FetchNowPlaying(ctx context.Context) ([]MovieSummary, error)
	FetchMovieDetails(ctx context.Context, movieID string) (*MovieDetails, error)
}

type MovieSummary struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
	GenreIDs         []int   `json:"genre_ids"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type MovieDetails struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path"`
	BackdropPath     string       `json:"backdrop_path"`
	ReleaseDate      string       `json:"release_date"`
	OriginalLanguage string       `json:"original_language"`
	Tagline          string       `json:"tagline"`
	VoteAverage      float64      `json:"vote_average"`
	Runtime          int          `json:"runtime"`
	Genres           []Genre      `json:"genres"`
	Cast             []CastMember `json:"cast"`
}

type nowPlayingResponse struct {
	Results []MovieSummary `json:"results"`
}

type detailsResponse struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Tagline          string  `json:"tagline"`
	VoteAverage      float64 `json:"vote_average"`
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
}

type creditsResponse struct {
	Cast []CastMember `json:"cast"`
}

type TMDBClient struct {
	client *resty.Client
}

func NewTMDBClient(cfg config.CatalogConfig) *TMDBClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json")

	return &TMDBClient{client: client}
}

func (c *TMDBClient) FetchNowPlaying(ctx context.Context) ([]MovieSummary, error) {
	var out nowPlayingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/movie/now_playing")
	if err != nil {
		return nil, fmt.Errorf("%w: now playing: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: now playing: status %d", ErrUpstream, resp.StatusCode())
	}
	return out.Results, nil
}

// FetchMovieDetails loads details and credits in parallel and keeps the top
// billed cast.
func (c *TMDBClient) FetchMovieDetails(ctx context.Context, movieID string) (*MovieDetails, error) {
	if _, err := strconv.Atoi(movieID); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrMovieNotFound, movieID)
	}

	var (
		details detailsResponse
		credits creditsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, "/movie/{id}", movieID, &details)
	})
	g.Go(func() error {
		return c.get(gctx, "/movie/{id}/credits", movieID, &credits)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cast := credits.Cast
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}

	return &MovieDetails{
		ID:               movieID,
		Title:            details.Title,
		Overview:         details.Overview,
		PosterPath:       details.PosterPath,
		BackdropPath:     details.BackdropPath,
		ReleaseDate:      details.ReleaseDate,
		OriginalLanguage: details.OriginalLanguage,
		Tagline:          details.Tagline,
		VoteAverage:      details.VoteAverage,
		Runtime:          details.Runtime,
		Genres:           details.Genres,
		Cast:             cast,
	}, nil
}

func (c *TMDBClient) get(ctx context.Context, path, movieID string, out interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", movieID).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	switch {
	case resp.StatusCode() == 404:
		return fmt.Errorf("%w: %s", ErrMovieNotFound, movieID)
	case resp.IsError():
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, path, resp.StatusCode())
	}
	return nil
}
