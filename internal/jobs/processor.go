// Package jobs runs the ticker-driven background work: releasing expired
// seat holds and emailing show reminders.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ReleaseSweeper is satisfied by release.Scheduler.
type ReleaseSweeper interface {
	RunDue(ctx context.Context) (int, error)
}

// ReminderSender is satisfied by bookings.Service.
type ReminderSender interface {
	SendShowReminders(ctx context.Context, window time.Duration) (int, error)
}

// Config contains configuration for background jobs
type Config struct {
	SweepInterval    time.Duration
	ReminderInterval time.Duration
}

// DefaultConfig returns default job configuration
func DefaultConfig() Config {
	return Config{
		SweepInterval:    15 * time.Second, // hold deadlines are checked every 15s
		ReminderInterval: 8 * time.Hour,
	}
}

// JobProcessor handles background jobs for seat holds and reminders
type JobProcessor struct {
	sweeper   ReleaseSweeper
	reminders ReminderSender
	config    Config
	log       *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	running bool
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(sweeper ReleaseSweeper, reminders ReminderSender, config Config, log *logger.Logger) *JobProcessor {
	defaults := DefaultConfig()
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaults.SweepInterval
	}
	if config.ReminderInterval <= 0 {
		config.ReminderInterval = defaults.ReminderInterval
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &JobProcessor{
		sweeper:   sweeper,
		reminders: reminders,
		config:    config,
		log:       log.WithComponent("jobs"),
	}
}

// Start starts all background jobs. Calling Start twice is a no-op.
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.mu.Lock()
	defer jp.mu.Unlock()
	if jp.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	jp.cancel = cancel
	jp.group = group
	jp.running = true

	if jp.sweeper != nil {
		group.Go(func() error {
			jp.loop(ctx, "release sweep", jp.config.SweepInterval, jp.sweep)
			return nil
		})
	}
	if jp.reminders != nil {
		group.Go(func() error {
			jp.loop(ctx, "show reminders", jp.config.ReminderInterval, jp.remind)
			return nil
		})
	}

	jp.log.Info("background jobs started",
		"sweep_interval", jp.config.SweepInterval.String(),
		"reminder_interval", jp.config.ReminderInterval.String())
}

// Stop cancels the jobs and waits for the current iteration to finish.
func (jp *JobProcessor) Stop() {
	jp.mu.Lock()
	if !jp.running {
		jp.mu.Unlock()
		return
	}
	jp.running = false
	cancel, group := jp.cancel, jp.group
	jp.mu.Unlock()

	cancel()
	_ = group.Wait()
	jp.log.Info("background jobs stopped")
}

func (jp *JobProcessor) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	jp.log.Debug("job loop started", "job", name, "interval", interval.String())

	for {
		select {
		case <-ticker.C:
			run(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// maxSweepBatches bounds one tick so a task that keeps coming back due
// cannot pin the loop.
const maxSweepBatches = 10

// sweep drains due release tasks, one batch at a time.
func (jp *JobProcessor) sweep(ctx context.Context) {
	total := 0
	for i := 0; i < maxSweepBatches && ctx.Err() == nil; i++ {
		n, err := jp.sweeper.RunDue(ctx)
		total += n
		if err != nil {
			jp.log.WithError(err).Error("release sweep failed")
			break
		}
		if n == 0 {
			break
		}
	}
	if total > 0 {
		jp.log.Info("release sweep processed tasks", "count", total)
	}
}

func (jp *JobProcessor) remind(ctx context.Context) {
	sent, err := jp.reminders.SendShowReminders(ctx, jp.config.ReminderInterval)
	if err != nil {
		jp.log.WithError(err).Error("show reminders failed")
		return
	}
	if sent > 0 {
		jp.log.Info("show reminders queued", "count", sent)
	}
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	jp.mu.Lock()
	defer jp.mu.Unlock()

	status := "stopped"
	if jp.running {
		status = "running"
	}
	return map[string]interface{}{
		"sweep_interval":    jp.config.SweepInterval.String(),
		"reminder_interval": jp.config.ReminderInterval.String(),
		"status":            status,
	}
}
