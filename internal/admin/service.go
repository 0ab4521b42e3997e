// Package admin serves the operator dashboard and listings.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/bookings"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/constants"
	"github.com/JasonDebnath001/QuickTix-server/pkg/cache"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"
)

// BookingStats is satisfied by bookings.Service.
type BookingStats interface {
	Stats(ctx context.Context) (*bookings.Stats, error)
}

// ShowCounter is satisfied by shows.Repository.
type ShowCounter interface {
	CountUpcomingShows(ctx context.Context, from time.Time) (int64, error)
}

// UserCounter is satisfied by users.Service.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalBookings int64     `json:"totalBookings"`
	TotalRevenue  float64   `json:"totalRevenue"`
	ActiveShows   int64     `json:"activeShows"`
	TotalUsers    int64     `json:"totalUser"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type Deps struct {
	Bookings BookingStats
	Shows    ShowCounter
	Users    UserCounter
	Cache    cache.Service
	Clock    clock.Clock
	Logger   *logger.Logger
}

type service struct {
	bookings BookingStats
	shows    ShowCounter
	users    UserCounter
	cache    cache.Service
	clock    clock.Clock
	log      *logger.Logger
}

func NewService(d Deps) Service {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Logger == nil {
		d.Logger = logger.GetDefault()
	}
	return &service{
		bookings: d.Bookings,
		shows:    d.Shows,
		users:    d.Users,
		cache:    d.Cache,
		clock:    d.Clock,
		log:      d.Logger.WithComponent("admin"),
	}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		var cached Dashboard
		if err := s.cache.Get(ctx, constants.CACHE_KEY_ADMIN_DASHBOARD, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.bookings.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking stats: %w", err)
	}
	now := s.clock.Now()
	active, err := s.shows.CountUpcomingShows(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count active shows: %w", err)
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	dashboard := &Dashboard{
		TotalBookings: stats.PaidBookings,
		TotalRevenue:  stats.Revenue,
		ActiveShows:   active,
		TotalUsers:    total,
		GeneratedAt:   now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, constants.CACHE_KEY_ADMIN_DASHBOARD, dashboard, constants.TTL_ADMIN_DASHBOARD); err != nil {
			s.log.WithError(err).Warn("failed to cache dashboard")
		}
	}
	return dashboard, nil
}
