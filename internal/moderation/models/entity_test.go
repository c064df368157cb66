package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "backoffice/pkg/domain-errors"
)

type EntityModelSuite struct {
	suite.Suite
}

func TestEntityModelSuite(t *testing.T) {
	suite.Run(t, new(EntityModelSuite))
}

// =============================================================================
// Kind and Status Legality
// =============================================================================

func (s *EntityModelSuite) TestParseKind() {
	s.Run("accepts every known kind", func() {
		for _, kind := range Kinds {
			parsed, err := ParseKind(string(kind))
			s.NoError(err)
			s.Equal(kind, parsed)
		}
	})

	s.Run("rejects unknown kind as not found", func() {
		_, err := ParseKind("warehouse")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects empty kind", func() {
		_, err := ParseKind("")
		s.Error(err)
	})
}

func (s *EntityModelSuite) TestAllows() {
	cases := []struct {
		kind    EntityKind
		allowed []Status
		denied  []Status
	}{
		{KindJob, []Status{StatusActive, StatusInactive, StatusExpired}, []Status{StatusArchived, StatusPaid, StatusPending}},
		{KindCompany, []Status{StatusActive, StatusInactive}, []Status{StatusExpired, StatusArchived}},
		{KindUser, []Status{StatusActive, StatusInactive}, []Status{StatusExpired, StatusRejected}},
		{KindSubscriptionPlan, []Status{StatusActive, StatusArchived}, []Status{StatusInactive, StatusExpired}},
		{KindInvoice, []Status{StatusPending, StatusPaid, StatusVoid}, []Status{StatusActive, StatusExpired}},
		{KindApplication, []Status{StatusPending, StatusAccepted, StatusRejected}, []Status{StatusActive, StatusVoid}},
	}

	for _, tc := range cases {
		s.Run(string(tc.kind), func() {
			for _, status := range tc.allowed {
				s.True(tc.kind.Allows(status), "%s should allow %s", tc.kind, status)
			}
			for _, status := range tc.denied {
				s.False(tc.kind.Allows(status), "%s should deny %s", tc.kind, status)
			}
		})
	}
}

func (s *EntityModelSuite) TestLegalStatuses() {
	s.Run("unknown kind returns nil", func() {
		s.Nil(EntityKind("warehouse").LegalStatuses())
	})

	s.Run("every kind has at least two statuses", func() {
		for _, kind := range Kinds {
			s.GreaterOrEqual(len(kind.LegalStatuses()), 2)
		}
	})
}

// =============================================================================
// Transitions
// =============================================================================

func (s *EntityModelSuite) TestCanTransitionTo() {
	job := Entity{ID: uuid.New(), Kind: KindJob, Status: StatusActive}

	s.Run("legal status passes", func() {
		s.NoError(job.CanTransitionTo(StatusInactive))
	})

	s.Run("same status passes", func() {
		s.NoError(job.CanTransitionTo(StatusActive))
	})

	s.Run("status outside the kind's set fails with invalid_status", func() {
		err := job.CanTransitionTo(StatusArchived)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))
	})
}

func (s *EntityModelSuite) TestApplyStatus() {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	s.Run("sets status and refreshes UpdatedAt", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive, CreatedAt: created, UpdatedAt: created}
		ent.ApplyStatus(StatusInactive, now)
		s.Equal(StatusInactive, ent.Status)
		s.Equal(now, ent.UpdatedAt)
		s.Equal(created, ent.CreatedAt)
	})

	s.Run("same-status transition still touches UpdatedAt", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive, CreatedAt: created, UpdatedAt: created}
		ent.ApplyStatus(StatusActive, now)
		s.Equal(StatusActive, ent.Status)
		s.Equal(now, ent.UpdatedAt)
	})
}

// =============================================================================
// Expiration Eligibility
// =============================================================================

func (s *EntityModelSuite) TestExpiresBefore() {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	s.Run("active job past expiry is eligible", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive, ExpiryDate: &past}
		s.True(ent.ExpiresBefore(now))
	})

	s.Run("active job with future expiry is not eligible", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive, ExpiryDate: &future}
		s.False(ent.ExpiresBefore(now))
	})

	s.Run("expiry exactly at now is not eligible", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive, ExpiryDate: &now}
		s.False(ent.ExpiresBefore(now))
	})

	s.Run("inactive job never expires", func() {
		ent := Entity{Kind: KindJob, Status: StatusInactive, ExpiryDate: &past}
		s.False(ent.ExpiresBefore(now))
	})

	s.Run("already expired job is not re-eligible", func() {
		ent := Entity{Kind: KindJob, Status: StatusExpired, ExpiryDate: &past}
		s.False(ent.ExpiresBefore(now))
	})

	s.Run("job without expiry date never expires", func() {
		ent := Entity{Kind: KindJob, Status: StatusActive}
		s.False(ent.ExpiresBefore(now))
	})

	s.Run("non-job kinds never expire", func() {
		ent := Entity{Kind: KindCompany, Status: StatusActive, ExpiryDate: &past}
		s.False(ent.ExpiresBefore(now))
	})
}
