package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"backoffice/internal/activity"
	activitymemory "backoffice/internal/activity/store/memory"
	"backoffice/internal/moderation/models"
	entitystore "backoffice/internal/moderation/store/entity"
)

type SweepSuite struct {
	suite.Suite
	entities    *entitystore.InMemory
	activityLog *activitymemory.InMemoryStore
	service     *Service
	ctx         context.Context
	now         time.Time
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepSuite))
}

func (s *SweepSuite) SetupTest() {
	s.entities = entitystore.NewInMemory()
	s.activityLog = activitymemory.NewInMemoryStore()
	s.service = New(s.entities, activity.NewPublisher(s.activityLog))
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
}

func (s *SweepSuite) seedJob(status models.Status, expiry *time.Time) models.Entity {
	created := s.now.Add(-30 * 24 * time.Hour)
	ent := models.Entity{
		ID:         uuid.New(),
		Kind:       models.KindJob,
		Status:     status,
		ExpiryDate: expiry,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	s.Require().NoError(s.entities.Save(s.ctx, ent))
	return ent
}

func (s *SweepSuite) TestSweepExpired() {
	s.Run("expires overdue active jobs and records system activity", func() {
		past := s.now.Add(-time.Hour)
		future := s.now.Add(time.Hour)
		overdue := s.seedJob(models.StatusActive, &past)
		current := s.seedJob(models.StatusActive, &future)

		result, err := s.service.SweepExpired(s.ctx, s.now)
		s.NoError(err)
		s.Equal(1, result.Expired)
		s.Empty(result.Failures)

		swept, err := s.entities.Find(s.ctx, models.KindJob, overdue.ID)
		s.NoError(err)
		s.Equal(models.StatusExpired, swept.Status)
		s.Equal(s.now, swept.UpdatedAt)

		untouched, err := s.entities.Find(s.ctx, models.KindJob, current.ID)
		s.NoError(err)
		s.Equal(models.StatusActive, untouched.Status)

		records, err := s.activityLog.ListRecent(s.ctx, 10)
		s.NoError(err)
		s.Require().Len(records, 1)
		s.Equal(activity.SystemActorID, records[0].ActorID)
		s.Equal(activity.ActionJobExpired, records[0].Action)
		s.Equal(overdue.ID, records[0].TargetID)
		s.Equal(SweepReason, records[0].Reason)
	})

	s.Run("rerunning the sweep is idempotent", func() {
		past := s.now.Add(-time.Hour)
		s.seedJob(models.StatusActive, &past)

		first, err := s.service.SweepExpired(s.ctx, s.now)
		s.NoError(err)
		s.Equal(1, first.Expired)

		second, err := s.service.SweepExpired(s.ctx, s.now)
		s.NoError(err)
		s.Equal(0, second.Expired, "already expired jobs must not be reprocessed")
	})

	s.Run("manually deactivated jobs are skipped", func() {
		past := s.now.Add(-time.Hour)
		paused := s.seedJob(models.StatusInactive, &past)

		result, err := s.service.SweepExpired(s.ctx, s.now)
		s.NoError(err)
		s.Equal(0, result.Expired)

		got, err := s.entities.Find(s.ctx, models.KindJob, paused.ID)
		s.NoError(err)
		s.Equal(models.StatusInactive, got.Status)
	})

	s.Run("nothing eligible yields an empty result", func() {
		result, err := s.service.SweepExpired(s.ctx, s.now)
		s.NoError(err)
		s.Equal(0, result.Expired)
		s.Empty(result.Failures)
	})
}
