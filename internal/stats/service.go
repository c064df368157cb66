package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/activity"
	"backoffice/internal/moderation/models"
	"backoffice/internal/platform/metrics"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/sentinel"
)

// UnknownActorLabel is shown when an actor ID no longer resolves to a user.
// A deleted admin must not fail the whole stats query.
const UnknownActorLabel = "former admin"

// EntityReader is the read-only slice of the entity store the aggregation
// engine needs. It never mutates anything.
type EntityReader interface {
	Find(ctx context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error)
	CountByStatus(ctx context.Context, kind models.EntityKind) (map[models.Status]int, error)
	CountCreatedBetween(ctx context.Context, kind models.EntityKind, from, to time.Time) (int, error)
}

// ActivityReader supplies the recent activity feed.
type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]activity.Record, error)
}

// Service computes dashboard statistics at query time. Recomputing on every
// read keeps a single source of truth; dashboard reads are infrequent enough
// that the scan cost is acceptable.
//
// Consistency: figures reflect whatever the entity store holds at query
// time. The activity feed may trail an in-flight transition by one append
// (the two stores are written as a two-step sequence, not a transaction).
type Service struct {
	entities EntityReader
	activity ActivityReader

	window        time.Duration
	activityLimit int

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithWindow overrides the default 30-day growth comparison window.
func WithWindow(window time.Duration) Option {
	return func(s *Service) {
		s.window = window
	}
}

// WithActivityLimit overrides the default feed length of 20.
func WithActivityLimit(limit int) Option {
	return func(s *Service) {
		s.activityLimit = limit
	}
}

// New constructs the aggregation engine.
func New(entities EntityReader, activityLog ActivityReader, opts ...Option) *Service {
	s := &Service{
		entities:      entities,
		activity:      activityLog,
		window:        30 * 24 * time.Hour,
		activityLimit: 20,
		tracer:        otel.Tracer("backoffice/stats"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute builds the full dashboard projection as of now.
func (s *Service) Compute(ctx context.Context, now time.Time) (DashboardStats, error) {
	ctx, span := s.tracer.Start(ctx, "stats.Compute")
	defer span.End()

	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.DashboardDuration.Observe(time.Since(started).Seconds())
		}
	}()

	stats := DashboardStats{
		GeneratedAt: now,
		Kinds:       make(map[models.EntityKind]KindCounts, len(models.Kinds)),
	}

	for _, kind := range models.Kinds {
		counts, err := s.kindCounts(ctx, kind, now)
		if err != nil {
			return DashboardStats{}, err
		}
		stats.Kinds[kind] = counts
	}

	breakdown, err := s.applicationBreakdown(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.Applications = breakdown

	views, err := s.RecentActivity(ctx, s.activityLimit)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.RecentActivities = views

	return stats, nil
}

func (s *Service) kindCounts(ctx context.Context, kind models.EntityKind, now time.Time) (KindCounts, error) {
	byStatus, err := s.entities.CountByStatus(ctx, kind)
	if err != nil {
		return KindCounts{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count "+string(kind)+" entities")
	}

	counts := KindCounts{
		Active:   byStatus[models.StatusActive],
		Inactive: byStatus[models.StatusInactive],
	}
	for _, n := range byStatus {
		counts.Total += n
	}

	growth, err := s.growth(ctx, kind, now)
	if err != nil {
		return KindCounts{}, err
	}
	counts.GrowthPct = growth
	return counts, nil
}

// growth compares entities created in the window ending at now against the
// window before it. A zero previous period reports 0 rather than raising a
// division error; propagating infinity to a display layer helps nobody.
func (s *Service) growth(ctx context.Context, kind models.EntityKind, now time.Time) (float64, error) {
	last, err := s.entities.CountCreatedBetween(ctx, kind, now.Add(-s.window), now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count recent "+string(kind)+" entities")
	}
	previous, err := s.entities.CountCreatedBetween(ctx, kind, now.Add(-2*s.window), now.Add(-s.window))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count previous "+string(kind)+" entities")
	}
	if previous == 0 {
		return 0, nil
	}
	return float64(last-previous) / float64(previous) * 100, nil
}

func (s *Service) applicationBreakdown(ctx context.Context) (ApplicationBreakdown, error) {
	byStatus, err := s.entities.CountByStatus(ctx, models.KindApplication)
	if err != nil {
		return ApplicationBreakdown{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count applications")
	}

	breakdown := ApplicationBreakdown{
		Pending:  byStatus[models.StatusPending],
		Accepted: byStatus[models.StatusAccepted],
	}
	for _, n := range byStatus {
		breakdown.Total += n
	}
	// Derived, not read back: the three figures sum to the total by
	// construction.
	breakdown.Rejected = breakdown.Total - breakdown.Pending - breakdown.Accepted
	return breakdown, nil
}

// RecentActivity returns the enriched activity feed, newest first.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]ActivityView, error) {
	records, err := s.activity.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list recent activity")
	}

	views := make([]ActivityView, 0, len(records))
	for _, record := range records {
		views = append(views, ActivityView{
			ID:          record.ID,
			CreatedAt:   record.CreatedAt,
			ActorID:     record.ActorID,
			ActorName:   s.resolveActor(ctx, record.ActorID),
			Action:      string(record.Action),
			ActionLabel: record.Action.Label(),
			TargetKind:  record.TargetKind,
			TargetID:    record.TargetID,
			Reason:      record.Reason,
		})
	}
	return views, nil
}

// resolveActor maps an actor ID to a display name. Resolution failures fall
// back to a placeholder; a missing admin must not break the feed.
func (s *Service) resolveActor(ctx context.Context, actorID uuid.UUID) string {
	if actorID == activity.SystemActorID {
		return activity.SystemActorLabel
	}
	if actorID == uuid.Nil {
		return UnknownActorLabel
	}

	user, err := s.entities.Find(ctx, models.KindUser, actorID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "actor lookup failed",
				"actor_id", actorID,
				"error", err,
			)
		}
		return UnknownActorLabel
	}
	if user.DisplayName == "" {
		return UnknownActorLabel
	}
	return user.DisplayName
}
