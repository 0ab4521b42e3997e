package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu      sync.Mutex
	batches []int
	err     error
	calls   int
}

func (f *fakeSweeper) RunDue(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeSweeper) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeReminders struct {
	mu      sync.Mutex
	windows []time.Duration
}

func (f *fakeReminders) SendShowReminders(_ context.Context, window time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, window)
	return 1, nil
}

func (f *fakeReminders) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

func TestSweepDrainsUntilEmpty(t *testing.T) {
	sweeper := &fakeSweeper{batches: []int{100, 100, 3}}
	jp := NewJobProcessor(sweeper, nil, Config{}, logger.Discard())

	jp.sweep(context.Background())

	// three non-empty batches plus the empty one that ends the drain
	assert.Equal(t, 4, sweeper.Calls())
}

func TestSweepStopsOnError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	jp := NewJobProcessor(sweeper, nil, Config{}, logger.Discard())

	jp.sweep(context.Background())

	assert.Equal(t, 1, sweeper.Calls())
}

func TestSweepIsBounded(t *testing.T) {
	batches := make([]int, 50)
	for i := range batches {
		batches[i] = 1
	}
	sweeper := &fakeSweeper{batches: batches}
	jp := NewJobProcessor(sweeper, nil, Config{}, logger.Discard())

	jp.sweep(context.Background())

	assert.Equal(t, maxSweepBatches, sweeper.Calls())
}

func TestDefaultsApplied(t *testing.T) {
	jp := NewJobProcessor(nil, nil, Config{}, nil)
	assert.Equal(t, DefaultConfig(), jp.config)
	assert.Equal(t, "stopped", jp.GetJobStatus()["status"])
}

func TestStartRunsBothLoops(t *testing.T) {
	sweeper := &fakeSweeper{}
	reminders := &fakeReminders{}
	jp := NewJobProcessor(sweeper, reminders, Config{
		SweepInterval:    5 * time.Millisecond,
		ReminderInterval: 10 * time.Millisecond,
	}, logger.Discard())

	jp.Start(context.Background())
	jp.Start(context.Background())
	assert.Equal(t, "running", jp.GetJobStatus()["status"])

	require.Eventually(t, func() bool {
		return sweeper.Calls() >= 2 && reminders.Calls() >= 1
	}, time.Second, 5*time.Millisecond)

	jp.Stop()
	jp.Stop()
	assert.Equal(t, "stopped", jp.GetJobStatus()["status"])

	after := sweeper.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, sweeper.Calls())

	reminders.mu.Lock()
	defer reminders.mu.Unlock()
	assert.Equal(t, 10*time.Millisecond, reminders.windows[0])
}
