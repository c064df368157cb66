package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"backoffice/internal/activity"
	"backoffice/internal/moderation/models"
	dErrors "backoffice/pkg/domain-errors"
)

// SweepReason is recorded on every automatically expired job.
const SweepReason = "automatic expiration"

// SweepResult reports one sweep pass. Failures never abort the scan; they
// are collected here and surfaced once at the end.
type SweepResult struct {
	Expired  int            `json:"expired"`
	Failures []SweepFailure `json:"failures,omitempty"`
}

// SweepFailure identifies a job the sweep could not expire this pass.
// It stays eligible and will be retried on the next tick.
type SweepFailure struct {
	JobID uuid.UUID `json:"job_id"`
	Error string    `json:"error"`
}

// SweepExpired expires every active job whose expiry date precedes now.
// Re-running with the same now is a no-op for already-expired jobs: the
// selection predicate (status = active) excludes them.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "moderation.SweepExpired")
	defer span.End()

	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.SweepDuration.Observe(time.Since(started).Seconds())
		}
	}()

	jobs, err := s.entities.ListExpiringJobs(ctx, now)
	if err != nil {
		return SweepResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to scan for expiring jobs")
	}

	var result SweepResult
	for _, job := range jobs {
		job.ApplyStatus(models.StatusExpired, now)
		if err := s.entities.Save(ctx, job); err != nil {
			// One bad record must not abort the sweep.
			result.Failures = append(result.Failures, SweepFailure{
				JobID: job.ID,
				Error: err.Error(),
			})
			if s.metrics != nil {
				s.metrics.SweepFailures.Inc()
			}
			if s.logger != nil {
				s.logger.WarnContext(ctx, "sweep could not expire job",
					"job_id", job.ID,
					"error", err,
				)
			}
			continue
		}

		s.recordActivity(ctx, activity.Record{
			CreatedAt:  now,
			ActorID:    activity.SystemActorID,
			Action:     activity.ActionJobExpired,
			TargetKind: string(models.KindJob),
			TargetID:   job.ID,
			Reason:     SweepReason,
		})

		result.Expired++
		if s.metrics != nil {
			s.metrics.SweepExpired.Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.expired", result.Expired),
		attribute.Int("sweep.failures", len(result.Failures)),
	)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "expiration sweep finished",
			"expired", result.Expired,
			"failures", len(result.Failures),
		)
	}
	return result, nil
}
