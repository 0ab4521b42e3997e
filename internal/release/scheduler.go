package release

import (
	"context"
	"fmt"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/clock"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/google/uuid"
)

// BookingReleaser frees the seats of a booking whose hold expired. It must be
// idempotent and a no-op for paid or missing bookings.
type BookingReleaser interface {
	OnDeadline(ctx context.Context, bookingID uuid.UUID) error
}

type Scheduler struct {
	repo         Repository
	releaser     BookingReleaser
	clock        clock.Clock
	hold         time.Duration
	batchSize    int
	retryBackoff time.Duration
	maxDelay     time.Duration
	log          *logger.Logger
}

func NewScheduler(repo Repository, cfg config.BookingConfig, clk clock.Clock, log *logger.Logger) *Scheduler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Scheduler{
		repo:         repo,
		clock:        clk,
		hold:         cfg.HoldDuration,
		batchSize:    cfg.BatchSize,
		retryBackoff: cfg.RetryBackoff,
		maxDelay:     cfg.MaxRetryDelay,
		log:          log.WithComponent("release"),
	}
}

// SetReleaser completes construction; the releaser itself depends on the
// scheduler.
func (s *Scheduler) SetReleaser(r BookingReleaser) {
	s.releaser = r
}

// Schedule joins the transaction on ctx when there is one, so the task
// commits with the booking it guards.
func (s *Scheduler) Schedule(ctx context.Context, bookingID uuid.UUID, dueAt time.Time) error {
	if err := s.repo.Upsert(ctx, bookingID, dueAt); err != nil {
		return fmt.Errorf("failed to schedule release of %s: %w", bookingID, err)
	}
	return nil
}

func (s *Scheduler) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to cancel release of %s: %w", bookingID, err)
	}
	return nil
}

// RunDue fires every task due by now, one batch at a time. Failed tasks are
// pushed back with exponential delay.
func (s *Scheduler) RunDue(ctx context.Context) (int, error) {
	if s.releaser == nil {
		return 0, fmt.Errorf("release scheduler has no releaser")
	}

	tasks, err := s.repo.ListDue(ctx, s.clock.Now(), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due release tasks: %w", err)
	}

	released := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}

		if err := s.releaser.OnDeadline(ctx, task.BookingID); err != nil {
			s.retry(ctx, task, err)
			continue
		}
		if err := s.repo.Delete(ctx, task.BookingID); err != nil {
			s.log.WithError(err).Warn("failed to drop fired release task", "booking_id", task.BookingID)
		}
		released++
	}
	return released, nil
}

func (s *Scheduler) retry(ctx context.Context, task Task, cause error) {
	attempts := task.Attempts + 1
	next := s.clock.Now().Add(s.backoff(attempts))

	s.log.WithError(cause).Warn("release task failed",
		"booking_id", task.BookingID,
		"attempts", attempts,
		"next_due_at", next,
	)

	if err := s.repo.Reschedule(ctx, task.BookingID, next, attempts, cause.Error()); err != nil {
		s.log.WithError(err).Error("failed to reschedule release task", "booking_id", task.BookingID)
	}
}

func (s *Scheduler) backoff(attempts int) time.Duration {
	delay := s.retryBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= s.maxDelay {
			return s.maxDelay
		}
	}
	if delay > s.maxDelay {
		return s.maxDelay
	}
	return delay
}

// Recover recreates tasks for pending bookings that have none, due when
// their original hold would have expired.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	orphans, err := s.repo.ListOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find orphaned bookings: %w", err)
	}

	for _, o := range orphans {
		if err := s.repo.Upsert(ctx, o.BookingID, o.CreatedAt.Add(s.hold)); err != nil {
			return 0, fmt.Errorf("failed to recover release of %s: %w", o.BookingID, err)
		}
	}
	if len(orphans) > 0 {
		s.log.Info("recovered release tasks", "count", len(orphans))
	}
	return len(orphans), nil
}

// HoldDuration is how long a pending booking keeps its seats.
func (s *Scheduler) HoldDuration() time.Duration {
	return s.hold
}
