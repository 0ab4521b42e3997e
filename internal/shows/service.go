package shows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/catalog"
	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/pkg/cache"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/google/uuid"
)

var ErrInvalidShowInput = errors.New("invalid show date or time")

// RecipientLister yields everyone who should hear about a new movie.
type RecipientLister interface {
	ListRecipients(ctx context.Context) ([]notifications.Recipient, error)
}

// Announcer sends the new movie email. *notifications.Dispatcher satisfies it.
type Announcer interface {
	NewShow(recipients []notifications.Recipient, details notifications.NewShowDetails)
}

type Service interface {
	AddShows(ctx context.Context, req AddShowsRequest) (*AddShowsResponse, error)
	ListUpcomingMovies(ctx context.Context) ([]Movie, error)
	GetMovieShows(ctx context.Context, movieID string) (*MovieShowsResponse, error)
	ListUpcomingShows(ctx context.Context) ([]Show, error)
	NowPlaying(ctx context.Context) ([]catalog.MovieSummary, error)
	OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
	InvalidateSeats(ctx context.Context, showID uuid.UUID)
}

type service struct {
	repo       Repository
	tx         database.Transactor
	catalog    catalog.Provider
	recipients RecipientLister
	announcer  Announcer
	cache      cache.Service
	clock      clock.Clock
	clientURL  string
	log        *logger.Logger

	// seatGen counts invalidations per show. A cache fill that started before
	// an invalidation must not be written back.
	seatMu  sync.Mutex
	seatGen map[uuid.UUID]uint64
}

type Deps struct {
	Repo       Repository
	Tx         database.Transactor
	Catalog    catalog.Provider
	Recipients RecipientLister
	Announcer  Announcer
	Cache      cache.Service
	Clock      clock.Clock
	ClientURL  string
	Logger     *logger.Logger
}

func NewService(d Deps) Service {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Logger == nil {
		d.Logger = logger.GetDefault()
	}
	return &service{
		repo:       d.Repo,
		tx:         d.Tx,
		catalog:    d.Catalog,
		recipients: d.Recipients,
		announcer:  d.Announcer,
		cache:      d.Cache,
		clock:      d.Clock,
		clientURL:  strings.TrimRight(d.ClientURL, "/"),
		log:        d.Logger.WithComponent("shows"),
		seatGen:    make(map[uuid.UUID]uint64),
	}
}

func (s *service) AddShows(ctx context.Context, req AddShowsRequest) (*AddShowsResponse, error) {
	starts, err := expandShowTimes(req.ShowsInput)
	if err != nil {
		return nil, err
	}

	movie, err := s.repo.GetMovie(ctx, req.MovieID)
	fetched := false
	if errors.Is(err, ErrMovieNotFound) {
		details, ferr := s.catalog.FetchMovieDetails(ctx, req.MovieID)
		if ferr != nil {
			return nil, fmt.Errorf("failed to fetch movie %s: %w", req.MovieID, ferr)
		}
		movie = NewMovieFromCatalog(details)
		fetched = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}

	created := make([]Show, 0, len(starts))
	for _, start := range starts {
		created = append(created, Show{
			ID:            uuid.New(),
			MovieID:       movie.ID,
			ShowDateTime:  start,
			ShowPrice:     req.ShowPrice,
			OccupiedSeats: map[string]string{},
		})
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if fetched {
			if err := s.repo.CreateMovie(ctx, movie); err != nil {
				return fmt.Errorf("failed to store movie: %w", err)
			}
		}
		if err := s.repo.CreateShows(ctx, created); err != nil {
			return fmt.Errorf("failed to create shows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &AddShowsResponse{MovieID: movie.ID, Created: len(created)}
	for _, show := range created {
		resp.ShowIDs = append(resp.ShowIDs, show.ID.String())
		s.log.LogShowCreated(ctx, show.ID.String(), movie.ID, show.ShowDateTime)
	}

	s.announce(ctx, movie)
	return resp, nil
}

func (s *service) announce(ctx context.Context, movie *Movie) {
	if s.announcer == nil || s.recipients == nil {
		return
	}
	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		s.log.WithError(err).Warn("skipping new movie announcement", "movie_id", movie.ID)
		return
	}
	s.announcer.NewShow(recipients, notifications.NewShowDetails{
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		BookingURL: s.clientURL + "/movies/" + movie.ID,
	})
}

// expandShowTimes turns each date and its times into UTC start instants.
func expandShowTimes(input []ShowInput) ([]time.Time, error) {
	var starts []time.Time
	for _, in := range input {
		for _, t := range in.Time {
			start, err := parseShowTime(in.Date, t)
			if err != nil {
				return nil, err
			}
			starts = append(starts, start)
		}
	}
	if len(starts) == 0 {
		return nil, ErrInvalidShowInput
	}
	return starts, nil
}

func parseShowTime(date, clockTime string) (time.Time, error) {
	value := strings.TrimSpace(date) + "T" + strings.TrimSpace(clockTime)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidShowInput, value)
}

func (s *service) ListUpcomingMovies(ctx context.Context) ([]Movie, error) {
	movies, err := s.repo.ListUpcomingMovies(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming movies: %w", err)
	}
	return movies, nil
}

func (s *service) GetMovieShows(ctx context.Context, movieID string) (*MovieShowsResponse, error) {
	movie, err := s.repo.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	shows, err := s.repo.ListMovieShows(ctx, movieID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}

	dateTime := make(map[string][]ShowSlot)
	for _, show := range shows {
		day := show.ShowDateTime.UTC().Format("2006-01-02")
		dateTime[day] = append(dateTime[day], ShowSlot{Time: show.ShowDateTime.UTC(), ShowID: show.ID.String()})
	}

	return &MovieShowsResponse{Movie: movie, DateTime: dateTime}, nil
}

func (s *service) ListUpcomingShows(ctx context.Context) ([]Show, error) {
	return s.repo.ListUpcomingShows(ctx, s.clock.Now())
}

func (s *service) NowPlaying(ctx context.Context) ([]catalog.MovieSummary, error) {
	return s.catalog.FetchNowPlaying(ctx)
}

// OccupiedSeats reads through a short-lived cache. Cache failures fall back
// to the database.
func (s *service) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	key := constants.BuildOccupiedSeatsKey(showID.String())

	var occupied []string
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &occupied)
		if err == nil {
			return occupied, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("occupied seats cache read failed", "show_id", showID)
		}
	}

	gen := s.seatGeneration(showID)
	show, err := s.repo.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	occupied = show.OccupiedSeats.Occupied()

	if s.cache != nil {
		s.fillSeats(ctx, showID, key, gen, occupied)
	}
	return occupied, nil
}

func (s *service) seatGeneration(showID uuid.UUID) uint64 {
	s.seatMu.Lock()
	defer s.seatMu.Unlock()
	return s.seatGen[showID]
}

// fillSeats caches occupied unless the show was invalidated after gen was
// read. The lock orders the write against InvalidateSeats.
func (s *service) fillSeats(ctx context.Context, showID uuid.UUID, key string, gen uint64, occupied []string) {
	s.seatMu.Lock()
	defer s.seatMu.Unlock()
	if s.seatGen[showID] != gen {
		return
	}
	if err := s.cache.Set(ctx, key, occupied, constants.TTL_OCCUPIED_SEATS); err != nil {
		s.log.WithError(err).Warn("occupied seats cache write failed", "show_id", showID)
	}
}

func (s *service) InvalidateSeats(ctx context.Context, showID uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.seatMu.Lock()
	defer s.seatMu.Unlock()
	s.seatGen[showID]++
	if err := s.cache.Delete(ctx, constants.BuildOccupiedSeatsKey(showID.String())); err != nil {
		s.log.WithError(err).Warn("occupied seats cache invalidation failed", "show_id", showID)
	}
}
