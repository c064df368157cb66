package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks EntityStore,ActivityPublisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/activity"
	"backoffice/internal/moderation/models"
	"backoffice/internal/platform/metrics"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/sentinel"
	"backoffice/pkg/requestcontext"
)

// EntityStore is the persistence boundary for moderated entities.
type EntityStore interface {
	Find(ctx context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error)
	Save(ctx context.Context, ent models.Entity) error
	List(ctx context.Context, kind models.EntityKind, status *models.Status) ([]models.Entity, error)
	ListExpiringJobs(ctx context.Context, now time.Time) ([]models.Entity, error)
}

// ActivityPublisher appends one audit record per applied transition.
type ActivityPublisher interface {
	Emit(ctx context.Context, record activity.Record) (activity.Record, error)
}

// Service is the lifecycle engine: the single authority for changing an
// entity's status, whether an admin asked or the sweep did.
type Service struct {
	entities EntityStore
	activity ActivityPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

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

// New constructs the lifecycle engine.
func New(entities EntityStore, publisher ActivityPublisher, opts ...Option) *Service {
	s := &Service{
		entities: entities,
		activity: publisher,
		tracer:   otel.Tracer("backoffice/moderation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transition applies a manual admin status change. Validation failures apply
// no side effects; after a successful store write the activity append is
// always attempted, and its failure is a consistency warning rather than a
// rollback (entity state makes forward progress, audit completeness is
// eventual).
func (s *Service) Transition(
	ctx context.Context,
	kind models.EntityKind,
	id uuid.UUID,
	status models.Status,
	reason string,
) (models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "moderation.Transition",
		trace.WithAttributes(
			attribute.String("entity.kind", string(kind)),
			attribute.String("entity.status", string(status)),
		))
	defer span.End()

	if !kind.Allows(status) {
		s.rejected(kind)
		return models.Entity{}, dErrors.New(dErrors.CodeInvalidStatus,
			string(status)+" is not a valid "+string(kind)+" status")
	}

	ent, err := s.entities.Find(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.rejected(kind)
			return models.Entity{}, dErrors.New(dErrors.CodeNotFound, string(kind)+" not found")
		}
		return models.Entity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load entity")
	}

	now := requestcontext.Now(ctx)
	previous := ent.Status
	ent.ApplyStatus(status, now)

	// A failed write aborts the whole transition: no orphan activity record.
	if err := s.entities.Save(ctx, ent); err != nil {
		return models.Entity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist transition")
	}

	s.recordActivity(ctx, activity.Record{
		CreatedAt:  now,
		ActorID:    requestcontext.ActorID(ctx),
		Action:     actionFor(kind, status),
		TargetKind: string(kind),
		TargetID:   id,
		Reason:     reason,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})

	s.logTransition(ctx, ent, previous, reason)
	if s.metrics != nil {
		s.metrics.TransitionApplied(string(kind))
	}
	return ent, nil
}

// Get returns one entity for moderation screens.
func (s *Service) Get(ctx context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error) {
	ent, err := s.entities.Find(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Entity{}, dErrors.New(dErrors.CodeNotFound, string(kind)+" not found")
		}
		return models.Entity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load entity")
	}
	return ent, nil
}

// List returns entities of a kind, optionally filtered by status.
func (s *Service) List(ctx context.Context, kind models.EntityKind, status *models.Status) ([]models.Entity, error) {
	if status != nil && !kind.Allows(*status) {
		return nil, dErrors.New(dErrors.CodeInvalidStatus,
			string(*status)+" is not a valid "+string(kind)+" status")
	}
	entities, err := s.entities.List(ctx, kind, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list entities")
	}
	return entities, nil
}

// recordActivity attempts the audit append after a successful entity write.
// Failure here must not roll back the entity change; it is counted and
// logged so operators can reconcile.
func (s *Service) recordActivity(ctx context.Context, record activity.Record) {
	if _, err := s.activity.Emit(ctx, record); err != nil {
		if s.metrics != nil {
			s.metrics.AuditWarnings.Inc()
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "activity append failed after entity write",
				"log_type", "audit",
				"action", record.Action,
				"target_kind", record.TargetKind,
				"target_id", record.TargetID,
				"error", err,
			)
		}
	}
}

func (s *Service) logTransition(ctx context.Context, ent models.Entity, previous models.Status, reason string) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, "entity status changed",
		"log_type", "audit",
		"kind", ent.Kind,
		"entity_id", ent.ID,
		"from", previous,
		"to", ent.Status,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) rejected(kind models.EntityKind) {
	if s.metrics != nil {
		s.metrics.TransitionRejected(string(kind))
	}
}

// actionFor picks the activity action for a manual transition. Statuses that
// encode a sharper meaning get the specific action type; everything else is
// a generic status change.
func actionFor(kind models.EntityKind, to models.Status) activity.ActionType {
	switch {
	case kind == models.KindUser && to == models.StatusInactive:
		return activity.ActionUserBlocked
	case kind == models.KindUser && to == models.StatusActive:
		return activity.ActionUserUnblocked
	case kind == models.KindSubscriptionPlan && to == models.StatusArchived:
		return activity.ActionSubscriptionCancelled
	default:
		return activity.ActionStatusChange
	}
}
