package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/payments"
	"github.com/JasonDebnath001/QuickTix-server/internal/seats"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/database"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/google/uuid"
)

// ShowStore is the slice of the show repository that reservations need.
type ShowStore interface {
	GetShow(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	LockShow(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	UpdateSeats(ctx context.Context, id uuid.UUID, occupied seats.SeatMap) error
	GetMovie(ctx context.Context, id string) (*shows.Movie, error)
}

// SeatCache drops the cached seat list of a show after its map changes.
type SeatCache interface {
	InvalidateSeats(ctx context.Context, showID uuid.UUID)
}

// ReleaseScheduler owns the deadline of each pending booking. Both calls
// join the transaction on ctx.
type ReleaseScheduler interface {
	Schedule(ctx context.Context, bookingID uuid.UUID, dueAt time.Time) error
	Cancel(ctx context.Context, bookingID uuid.UUID) error
}

// UserDirectory resolves email recipients by user id.
type UserDirectory interface {
	RecipientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]notifications.Recipient, error)
}

// Mailer is the fire-and-forget side of notifications.
type Mailer interface {
	BookingConfirmed(r notifications.Recipient, details notifications.BookingDetails)
	ShowReminder(r notifications.Recipient, details notifications.ReminderDetails)
}

type Service interface {
	CheckAvailability(ctx context.Context, showID uuid.UUID, selected []string) (bool, error)
	Reserve(ctx context.Context, userID uuid.UUID, showID uuid.UUID, selected []string, origin string) (*ReserveResponse, error)
	OnPaymentConfirmed(ctx context.Context, bookingID string) error
	OnDeadline(ctx context.Context, bookingID uuid.UUID) error
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	ListBookings(ctx context.Context, limit, offset int) ([]Booking, error)
	Stats(ctx context.Context) (*Stats, error)
	SendShowReminders(ctx context.Context, window time.Duration) (int, error)
}

type Config struct {
	HoldDuration   time.Duration
	GatewayTimeout time.Duration
	Currency       string
}

type Deps struct {
	Repo      Repository
	Shows     ShowStore
	SeatCache SeatCache
	Tx        database.Transactor
	Scheduler ReleaseScheduler
	Gateway   payments.Gateway
	Users     UserDirectory
	Mailer    Mailer
	Clock     clock.Clock
	Logger    *logger.Logger
}

type service struct {
	cfg       Config
	repo      Repository
	shows     ShowStore
	seatCache SeatCache
	tx        database.Transactor
	scheduler ReleaseScheduler
	gateway   payments.Gateway
	users     UserDirectory
	mailer    Mailer
	clock     clock.Clock
	log       *logger.Logger
}

func NewService(cfg Config, d Deps) Service {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Logger == nil {
		d.Logger = logger.GetDefault()
	}
	return &service{
		cfg:       cfg,
		repo:      d.Repo,
		shows:     d.Shows,
		seatCache: d.SeatCache,
		tx:        d.Tx,
		scheduler: d.Scheduler,
		gateway:   d.Gateway,
		users:     d.Users,
		mailer:    d.Mailer,
		clock:     d.Clock,
		log:       d.Logger.WithComponent("bookings"),
	}
}

func (s *service) CheckAvailability(ctx context.Context, showID uuid.UUID, selected []string) (bool, error) {
	show, err := s.shows.GetShow(ctx, showID)
	if err != nil {
		return false, err
	}
	return show.OccupiedSeats.Available(selected), nil
}

// Reserve claims the seats under the show row lock, then opens a checkout
// session. A failed session undoes the claim.
func (s *service) Reserve(ctx context.Context, userID uuid.UUID, showID uuid.UUID, selected []string, origin string) (*ReserveResponse, error) {
	if err := seats.ValidateSelection(selected); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	booking := &Booking{
		ID:          uuid.New(),
		UserID:      userID,
		ShowID:      showID,
		BookedSeats: seats.SeatList(append([]string(nil), selected...)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	expiresAt := now.Add(s.cfg.HoldDuration)

	var movieID string
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		show, err := s.shows.LockShow(ctx, showID)
		if err != nil {
			return err
		}
		if err := show.OccupiedSeats.Claim(selected, booking.Holder()); err != nil {
			return err
		}
		if err := s.shows.UpdateSeats(ctx, showID, show.OccupiedSeats); err != nil {
			return err
		}

		booking.Amount = show.ShowPrice * float64(len(selected))
		movieID = show.MovieID
		if err := s.repo.Create(ctx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return s.scheduler.Schedule(ctx, booking.ID, expiresAt)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, showID)
	s.log.LogBookingReserved(ctx, booking.ID.String(), showID.String(), userID.String(), selected)

	session, err := s.openSession(ctx, booking, movieID, origin)
	if err != nil {
		s.rollback(ctx, booking, err)
		if !errors.Is(err, apperr.ErrGateway) {
			err = fmt.Errorf("%w: %v", apperr.ErrGateway, err)
		}
		return nil, err
	}

	if err := s.repo.SetPaymentSession(ctx, booking.ID, session.ID, session.URL); err != nil {
		// The webhook resolves the booking from session metadata, so payment still lands.
		s.log.WithError(err).Warn("failed to record payment session", "booking_id", booking.ID)
	}

	return &ReserveResponse{
		BookingID:   booking.ID.String(),
		RedirectURL: session.URL,
		Amount:      booking.Amount,
		Seats:       booking.BookedSeats,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *service) openSession(ctx context.Context, booking *Booking, movieID, origin string) (*payments.Session, error) {
	description := "Movie ticket"
	if movie, err := s.shows.GetMovie(ctx, movieID); err == nil && movie.Title != "" {
		description = movie.Title
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	return s.gateway.CreateSession(gctx, payments.SessionRequest{
		BookingID:   booking.ID.String(),
		Amount:      booking.Amount,
		Description: description,
		Origin:      origin,
	})
}

// rollback compensates a reservation whose checkout never opened. It runs
// detached from the request so a disconnecting client cannot skip it.
func (s *service) rollback(ctx context.Context, booking *Booking, cause error) {
	ctx = context.WithoutCancel(ctx)
	freed, _, err := s.releasePending(ctx, booking.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to roll back reservation",
			"booking_id", booking.ID,
			"gateway_error", cause.Error(),
		)
		return
	}
	s.log.WithError(cause).Warn("reservation rolled back after gateway failure",
		"booking_id", booking.ID,
		"freed", freed,
	)
}

// OnPaymentConfirmed marks a pending booking paid and cancels its release.
// Repeated calls are no-ops.
func (s *service) OnPaymentConfirmed(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownBooking, bookingID)
	}

	var confirmed *Booking
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		booking, err := s.repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if booking.IsPaid {
			return nil
		}
		if err := s.repo.MarkPaid(ctx, id); err != nil {
			return err
		}
		if err := s.scheduler.Cancel(ctx, id); err != nil {
			return err
		}
		confirmed = booking
		return nil
	})
	if err != nil {
		return err
	}
	if confirmed == nil {
		return nil
	}

	s.log.LogPaymentConfirmed(ctx, confirmed.ID.String(), confirmed.UserID.String())
	s.sendConfirmation(ctx, confirmed)
	return nil
}

func (s *service) sendConfirmation(ctx context.Context, booking *Booking) {
	if s.mailer == nil || s.users == nil {
		return
	}

	recipients, err := s.users.RecipientsByID(ctx, []uuid.UUID{booking.UserID})
	if err != nil {
		s.log.WithError(err).Warn("skipping booking confirmation email", "booking_id", booking.ID)
		return
	}
	recipient, ok := recipients[booking.UserID]
	if !ok {
		return
	}

	details := notifications.BookingDetails{
		BookingID: booking.ID.String(),
		ShowID:    booking.ShowID.String(),
		Seats:     booking.BookedSeats,
		Amount:    booking.Amount,
		Currency:  s.cfg.Currency,
	}
	if show, err := s.shows.GetShow(ctx, booking.ShowID); err == nil {
		details.ShowTime = show.ShowDateTime
		if movie, err := s.shows.GetMovie(ctx, show.MovieID); err == nil {
			details.MovieTitle = movie.Title
		}
	}
	s.mailer.BookingConfirmed(recipient, details)
}

// OnDeadline releases a booking whose hold expired. Paid or missing bookings
// only lose their task.
func (s *service) OnDeadline(ctx context.Context, bookingID uuid.UUID) error {
	freed, released, err := s.releasePending(ctx, bookingID)
	if err != nil {
		return err
	}
	if released {
		s.log.Info("booking hold expired", "booking_id", bookingID, "freed", freed)
	}
	return nil
}

// releasePending frees the seats of a pending booking and deletes it with
// its task. Locks are taken show first, then booking. released is false when
// the booking was already paid or gone.
func (s *service) releasePending(ctx context.Context, bookingID uuid.UUID) (freed []string, released bool, err error) {
	var showID uuid.UUID
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		snapshot, err := s.repo.Get(ctx, bookingID)
		if errors.Is(err, apperr.ErrUnknownBooking) {
			return s.scheduler.Cancel(ctx, bookingID)
		}
		if err != nil {
			return err
		}

		show, err := s.shows.LockShow(ctx, snapshot.ShowID)
		if err != nil && !errors.Is(err, apperr.ErrShowNotFound) {
			return err
		}

		booking, err := s.repo.Lock(ctx, bookingID)
		if errors.Is(err, apperr.ErrUnknownBooking) {
			return s.scheduler.Cancel(ctx, bookingID)
		}
		if err != nil {
			return err
		}
		if booking.IsPaid {
			return s.scheduler.Cancel(ctx, bookingID)
		}

		if show != nil {
			freed = show.OccupiedSeats.Release(booking.BookedSeats, booking.Holder())
			if len(freed) > 0 {
				if err := s.shows.UpdateSeats(ctx, show.ID, show.OccupiedSeats); err != nil {
					return err
				}
			}
			showID = show.ID
		}
		if err := s.repo.Delete(ctx, bookingID); err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		released = true
		return s.scheduler.Cancel(ctx, bookingID)
	})
	if err != nil {
		return nil, false, err
	}

	if released && showID != uuid.Nil {
		s.invalidate(ctx, showID)
		s.log.LogBookingReleased(ctx, bookingID.String(), showID.String(), freed)
	}
	return freed, released, nil
}

func (s *service) invalidate(ctx context.Context, showID uuid.UUID) {
	if s.seatCache != nil {
		s.seatCache.InvalidateSeats(ctx, showID)
	}
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *service) ListBookings(ctx context.Context, limit, offset int) ([]Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// SendShowReminders emails every holder of a paid booking whose show starts
// within the next window.
func (s *service) SendShowReminders(ctx context.Context, window time.Duration) (int, error) {
	if s.mailer == nil || s.users == nil {
		return 0, nil
	}

	now := s.clock.Now()
	bookings, err := s.repo.ListPaidForShowsBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings for reminders: %w", err)
	}
	if len(bookings) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.UserID)
	}
	recipients, err := s.users.RecipientsByID(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminder recipients: %w", err)
	}

	sent := 0
	for _, b := range bookings {
		recipient, ok := recipients[b.UserID]
		if !ok || b.Show == nil {
			continue
		}
		details := notifications.ReminderDetails{
			ShowID:   b.ShowID.String(),
			ShowTime: b.Show.ShowDateTime,
		}
		if b.Show.Movie != nil {
			details.MovieTitle = b.Show.Movie.Title
		}
		s.mailer.ShowReminder(recipient, details)
		sent++
	}
	return sent, nil
}
