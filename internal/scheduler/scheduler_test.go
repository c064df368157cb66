package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/moderation/service"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeSweeper) SweepExpired(_ context.Context, now time.Time) (service.SweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	if f.err != nil {
		return service.SweepResult{}, f.err
	}
	return service.SweepResult{Expired: 1}, nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLocker struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (f *fakeLocker) AcquireLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLocker) ReleaseLock(_ context.Context, _ string) error {
	f.releases++
	return nil
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 10, 3, 0, 0, 0, time.UTC)

	t.Run("runs the sweep without a locker", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		result, err := New(sweeper, time.Hour).Tick(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Expired)
		assert.Equal(t, []time.Time{now}, sweeper.calls)
	})

	t.Run("runs and releases when the lock is acquired", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		locker := &fakeLocker{acquired: true}
		New(sweeper, time.Hour, WithLocker(locker)).Tick(ctx, now)
		assert.Len(t, sweeper.calls, 1)
		assert.Equal(t, 1, locker.releases)
	})

	t.Run("skips when another replica holds the lock", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		locker := &fakeLocker{acquired: false}
		result, err := New(sweeper, time.Hour, WithLocker(locker)).Tick(ctx, now)
		assert.NoError(t, err)
		assert.Zero(t, result.Expired)
		assert.Empty(t, sweeper.calls)
		assert.Equal(t, 0, locker.releases)
	})

	t.Run("skips when lock acquisition errors", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		locker := &fakeLocker{acquireErr: errors.New("redis down")}
		New(sweeper, time.Hour, WithLocker(locker)).Tick(ctx, now)
		assert.Empty(t, sweeper.calls)
	})

	t.Run("sweep failure still releases the lock", func(t *testing.T) {
		sweeper := &fakeSweeper{err: errors.New("store unavailable")}
		locker := &fakeLocker{acquired: true}
		_, err := New(sweeper, time.Hour, WithLocker(locker)).Tick(ctx, now)
		assert.Error(t, err)
		assert.Len(t, sweeper.calls, 1)
		assert.Equal(t, 1, locker.releases)
	})
}

func TestRun(t *testing.T) {
	t.Run("sweeps immediately and stops on cancellation", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		s := New(sweeper, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		assert.Eventually(t, func() bool { return sweeper.callCount() == 1 },
			time.Second, 5*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}
