// Package scheduler drives the periodic expiration sweep. A single sweeper
// runs per deployment; the Redis lock keeps concurrent replicas from
// sweeping the same window twice.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"backoffice/internal/moderation/service"
)

const lockName = "expiration-sweep"

// ExpirationSweeper expires overdue jobs as of the supplied time.
type ExpirationSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (service.SweepResult, error)
}

// Locker guards the sweep so only one replica runs it per interval.
// A nil Locker means the sweeper always runs.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name string) error
}

type Sweeper struct {
	sweeper  ExpirationSweeper
	locker   Locker
	interval time.Duration
	logger   *slog.Logger
}

type Option func(*Sweeper)

func WithLocker(l Locker) Option {
	return func(s *Sweeper) { s.locker = l }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

func New(sweeper ExpirationSweeper, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		sweeper:  sweeper,
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once at startup and then on every interval tick until the
// context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.Tick(ctx, time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(ctx, now.UTC())
		}
	}
}

// Tick runs a single sweep pass and reports its result. Lock contention is
// not an error: another replica holds the window and this one skips it.
func (s *Sweeper) Tick(ctx context.Context, now time.Time) (service.SweepResult, error) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, lockName, s.interval)
		if err != nil {
			s.logger.ErrorContext(ctx, "sweep lock acquisition failed", "error", err)
			return service.SweepResult{}, err
		}
		if !acquired {
			s.logger.InfoContext(ctx, "sweep skipped, lock held elsewhere")
			return service.SweepResult{}, nil
		}
		defer func() {
			if err := s.locker.ReleaseLock(ctx, lockName); err != nil {
				s.logger.WarnContext(ctx, "sweep lock release failed", "error", err)
			}
		}()
	}

	result, err := s.sweeper.SweepExpired(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "expiration sweep failed", "error", err)
		return service.SweepResult{}, err
	}
	if len(result.Failures) > 0 {
		s.logger.WarnContext(ctx, "expiration sweep finished with failures",
			"expired", result.Expired,
			"failures", len(result.Failures),
		)
	}
	return result, nil
}
