package bookings

import (
	"context"
	"sync"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/notifications"
	"github.com/JasonDebnath001/QuickTix-server/internal/payments"
	"github.com/JasonDebnath001/QuickTix-server/internal/seats"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shows"

	"github.com/google/uuid"
)

// memStore is an in-memory Repository, ShowStore and Transactor. Row locks
// are real mutexes held until the enclosing WithTx returns.
type memStore struct {
	mu       sync.Mutex
	shows    map[uuid.UUID]shows.Show
	movies   map[string]shows.Movie
	bookings map[uuid.UUID]Booking
	rowLocks map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		shows:    map[uuid.UUID]shows.Show{},
		movies:   map[string]shows.Movie{},
		bookings: map[uuid.UUID]Booking{},
		rowLocks: map[string]*sync.Mutex{},
	}
}

type txKey struct{}

type txState struct {
	held map[string]*sync.Mutex
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}
	st := &txState{held: map[string]*sync.Mutex{}}
	defer func() {
		for _, l := range st.held {
			l.Unlock()
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, st))
}

func (m *memStore) lockRow(ctx context.Context, key string) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		panic("row lock outside transaction: " + key)
	}
	if _, held := st.held[key]; held {
		return
	}
	m.mu.Lock()
	l, ok := m.rowLocks[key]
	if !ok {
		l = &sync.Mutex{}
		m.rowLocks[key] = l
	}
	m.mu.Unlock()
	l.Lock()
	st.held[key] = l
}

func (m *memStore) addShow(price float64, occupied seats.SeatMap) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if occupied == nil {
		occupied = seats.SeatMap{}
	}
	id := uuid.New()
	m.movies["550"] = shows.Movie{ID: "550", Title: "Fight Club"}
	m.shows[id] = shows.Show{ID: id, MovieID: "550", ShowPrice: price, ShowDateTime: testNow.Add(3 * time.Hour), OccupiedSeats: occupied}
	return id
}

func (m *memStore) seatMap(showID uuid.UUID) seats.SeatMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySeats(m.shows[showID].OccupiedSeats)
}

func (m *memStore) booking(id uuid.UUID) (Booking, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	return b, ok
}

func copySeats(in seats.SeatMap) seats.SeatMap {
	out := seats.SeatMap{}
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ShowStore

func (m *memStore) GetShow(_ context.Context, id uuid.UUID) (*shows.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return nil, apperr.ErrShowNotFound
	}
	s.OccupiedSeats = copySeats(s.OccupiedSeats)
	return &s, nil
}

func (m *memStore) LockShow(ctx context.Context, id uuid.UUID) (*shows.Show, error) {
	m.lockRow(ctx, "show:"+id.String())
	return m.GetShow(ctx, id)
}

func (m *memStore) UpdateSeats(_ context.Context, id uuid.UUID, occupied seats.SeatMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return apperr.ErrShowNotFound
	}
	s.OccupiedSeats = copySeats(occupied)
	m.shows[id] = s
	return nil
}

func (m *memStore) GetMovie(_ context.Context, id string) (*shows.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return nil, shows.ErrMovieNotFound
	}
	return &movie, nil
}

// Repository

func (m *memStore) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperr.ErrUnknownBooking
	}
	return &b, nil
}

func (m *memStore) Lock(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.lockRow(ctx, "booking:"+id.String())
	return m.Get(ctx, id)
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bookings, id)
	return nil
}

func (m *memStore) MarkPaid(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return apperr.ErrUnknownBooking
	}
	b.IsPaid = true
	b.PaymentLink = ""
	b.PaymentSessionID = nil
	m.bookings[id] = b
	return nil
}

func (m *memStore) SetPaymentSession(_ context.Context, id uuid.UUID, sessionID, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.IsPaid {
		return nil
	}
	b.PaymentSessionID = &sessionID
	b.PaymentLink = link
	m.bookings[id] = b
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(_ context.Context, limit, offset int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) ListPaidForShowsBetween(_ context.Context, from, to time.Time) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		show := m.shows[b.ShowID]
		if b.IsPaid && show.ShowDateTime.After(from) && !show.ShowDateTime.After(to) {
			movie := m.movies[show.MovieID]
			show.Movie = &movie
			b.Show = &show
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) Stats(context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	for _, b := range m.bookings {
		if b.IsPaid {
			s.PaidBookings++
			s.Revenue += b.Amount
		}
	}
	return &s, nil
}

// memScheduler records release tasks.
type memScheduler struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]time.Time
}

func newMemScheduler() *memScheduler {
	return &memScheduler{tasks: map[uuid.UUID]time.Time{}}
}

func (s *memScheduler) Schedule(_ context.Context, id uuid.UUID, dueAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = dueAt
	return nil
}

func (s *memScheduler) Cancel(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func (s *memScheduler) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	delay    time.Duration
	requests []payments.SessionRequest
}

func (g *fakeGateway) CreateSession(ctx context.Context, req payments.SessionRequest) (*payments.Session, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	err, delay := g.err, g.delay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &payments.Session{ID: "cs_" + req.BookingID, URL: "https://checkout.example/" + req.BookingID}, nil
}

func (g *fakeGateway) VerifyWebhook([]byte, string) (*payments.Event, error) { return nil, nil }

func (g *fakeGateway) ResolveBookingID(context.Context, *payments.Event) (string, error) {
	return "", nil
}

type fakeDirectory struct{}

func (fakeDirectory) RecipientsByID(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]notifications.Recipient, error) {
	out := map[uuid.UUID]notifications.Recipient{}
	for _, id := range ids {
		out[id] = notifications.Recipient{UserID: id.String(), Email: id.String() + "@example.com", Name: "User"}
	}
	return out, nil
}

type fakeMailer struct {
	mu        sync.Mutex
	confirmed []notifications.BookingDetails
	reminders []notifications.ReminderDetails
}

func (f *fakeMailer) BookingConfirmed(_ notifications.Recipient, d notifications.BookingDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, d)
}

func (f *fakeMailer) ShowReminder(_ notifications.Recipient, d notifications.ReminderDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, d)
}

type countingCache struct {
	mu    sync.Mutex
	calls map[uuid.UUID]int
}

func (c *countingCache) InvalidateSeats(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[uuid.UUID]int{}
	}
	c.calls[id]++
}
