package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"backoffice/internal/activity"
	activitymemory "backoffice/internal/activity/store/memory"
	"backoffice/internal/moderation/models"
	entitystore "backoffice/internal/moderation/store/entity"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/requestcontext"
)

// =============================================================================
// Lifecycle Engine Test Suite
// =============================================================================
// Memory-backed behavior tests: every assertion here exercises the real store
// and publisher, so transition side effects (entity write plus audit append)
// are observed end to end.

type LifecycleSuite struct {
	suite.Suite
	entities    *entitystore.InMemory
	activityLog *activitymemory.InMemoryStore
	service     *Service
	ctx         context.Context
	now         time.Time
	adminID     uuid.UUID
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.entities = entitystore.NewInMemory()
	s.activityLog = activitymemory.NewInMemoryStore()
	s.service = New(s.entities, activity.NewPublisher(s.activityLog))

	s.now = time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	s.adminID = uuid.New()
	ctx := requestcontext.WithTime(context.Background(), s.now)
	ctx = requestcontext.WithActorID(ctx, s.adminID)
	s.ctx = ctx
}

func (s *LifecycleSuite) seed(kind models.EntityKind, status models.Status) models.Entity {
	created := s.now.Add(-72 * time.Hour)
	ent := models.Entity{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.Require().NoError(s.entities.Save(s.ctx, ent))
	return ent
}

func (s *LifecycleSuite) lastActivity() activity.Record {
	records, err := s.activityLog.ListRecent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotEmpty(records)
	return records[0]
}

// =============================================================================
// Transition Tests
// =============================================================================

func (s *LifecycleSuite) TestTransition() {
	s.Run("applies legal transition and records activity", func() {
		job := s.seed(models.KindJob, models.StatusActive)

		got, err := s.service.Transition(s.ctx, models.KindJob, job.ID, models.StatusInactive, "spam listing")
		s.NoError(err)
		s.Equal(models.StatusInactive, got.Status)
		s.Equal(s.now, got.UpdatedAt)
		s.Equal(job.CreatedAt, got.CreatedAt)

		stored, err := s.entities.Find(s.ctx, models.KindJob, job.ID)
		s.NoError(err)
		s.Equal(models.StatusInactive, stored.Status)

		record := s.lastActivity()
		s.Equal(activity.ActionStatusChange, record.Action)
		s.Equal(s.adminID, record.ActorID)
		s.Equal(job.ID, record.TargetID)
		s.Equal("job", record.TargetKind)
		s.Equal("spam listing", record.Reason)
	})

	s.Run("same-status transition still writes and logs", func() {
		job := s.seed(models.KindJob, models.StatusActive)

		got, err := s.service.Transition(s.ctx, models.KindJob, job.ID, models.StatusActive, "re-approved")
		s.NoError(err)
		s.Equal(models.StatusActive, got.Status)
		s.Equal(s.now, got.UpdatedAt, "repeated action must refresh UpdatedAt")

		record := s.lastActivity()
		s.Equal(job.ID, record.TargetID)
		s.Equal("re-approved", record.Reason)
	})

	s.Run("illegal status for the kind is rejected without side effects", func() {
		job := s.seed(models.KindJob, models.StatusActive)
		before := s.activityLog.Len()

		_, err := s.service.Transition(s.ctx, models.KindJob, job.ID, models.StatusArchived, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))

		stored, findErr := s.entities.Find(s.ctx, models.KindJob, job.ID)
		s.NoError(findErr)
		s.Equal(models.StatusActive, stored.Status)
		s.Equal(before, s.activityLog.Len(), "rejected transition must not log activity")
	})

	s.Run("unknown entity returns not found", func() {
		_, err := s.service.Transition(s.ctx, models.KindJob, uuid.New(), models.StatusInactive, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("status legality is checked before existence", func() {
		// Illegal status on a missing entity reads as invalid_status, not
		// not_found: validation short-circuits the lookup.
		_, err := s.service.Transition(s.ctx, models.KindCompany, uuid.New(), models.StatusExpired, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))
	})
}

func (s *LifecycleSuite) TestTransitionActionMapping() {
	cases := []struct {
		name   string
		kind   models.EntityKind
		from   models.Status
		to     models.Status
		action activity.ActionType
	}{
		{"blocking a user", models.KindUser, models.StatusActive, models.StatusInactive, activity.ActionUserBlocked},
		{"unblocking a user", models.KindUser, models.StatusInactive, models.StatusActive, activity.ActionUserUnblocked},
		{"archiving a plan", models.KindSubscriptionPlan, models.StatusActive, models.StatusArchived, activity.ActionSubscriptionCancelled},
		{"deactivating a job", models.KindJob, models.StatusActive, models.StatusInactive, activity.ActionStatusChange},
		{"voiding an invoice", models.KindInvoice, models.StatusPending, models.StatusVoid, activity.ActionStatusChange},
		{"accepting an application", models.KindApplication, models.StatusPending, models.StatusAccepted, activity.ActionStatusChange},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			ent := s.seed(tc.kind, tc.from)
			_, err := s.service.Transition(s.ctx, tc.kind, ent.ID, tc.to, "")
			s.NoError(err)
			s.Equal(tc.action, s.lastActivity().Action)
		})
	}
}

func (s *LifecycleSuite) TestConcurrentOppositeTransitions() {
	company := s.seed(models.KindCompany, models.StatusActive)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, status := range []models.Status{models.StatusInactive, models.StatusActive} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.service.Transition(s.ctx, models.KindCompany, company.ID, status, "race")
		}()
	}
	wg.Wait()

	s.NoError(errs[0])
	s.NoError(errs[1])
	s.Equal(2, s.activityLog.Len(), "both transitions must be audited")

	stored, err := s.entities.Find(s.ctx, models.KindCompany, company.ID)
	s.NoError(err)
	s.Contains([]models.Status{models.StatusActive, models.StatusInactive}, stored.Status)
}

// =============================================================================
// Get / List Tests
// =============================================================================

func (s *LifecycleSuite) TestGet() {
	s.Run("returns existing entity", func() {
		ent := s.seed(models.KindInvoice, models.StatusPending)
		got, err := s.service.Get(s.ctx, models.KindInvoice, ent.ID)
		s.NoError(err)
		s.Equal(ent.ID, got.ID)
	})

	s.Run("missing entity returns not found", func() {
		_, err := s.service.Get(s.ctx, models.KindInvoice, uuid.New())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *LifecycleSuite) TestList() {
	s.seed(models.KindApplication, models.StatusPending)
	s.seed(models.KindApplication, models.StatusAccepted)

	s.Run("lists all of a kind", func() {
		got, err := s.service.List(s.ctx, models.KindApplication, nil)
		s.NoError(err)
		s.Len(got, 2)
	})

	s.Run("filters by status", func() {
		status := models.StatusPending
		got, err := s.service.List(s.ctx, models.KindApplication, &status)
		s.NoError(err)
		s.Len(got, 1)
	})

	s.Run("rejects a filter status outside the kind's set", func() {
		status := models.StatusExpired
		_, err := s.service.List(s.ctx, models.KindApplication, &status)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))
	})
}
