package entity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/moderation/models"
	"backoffice/pkg/platform/sentinel"
)

// InMemory keeps entities in mutex-guarded maps keyed (kind, id).
// Last write wins on concurrent saves of the same entity, matching the
// contention policy of the durable store.
type InMemory struct {
	mu       sync.RWMutex
	entities map[models.EntityKind]map[uuid.UUID]models.Entity
}

func NewInMemory() *InMemory {
	return &InMemory{entities: make(map[models.EntityKind]map[uuid.UUID]models.Entity)}
}

func (s *InMemory) Find(_ context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ent, ok := s.entities[kind][id]; ok {
		return ent, nil
	}
	return models.Entity{}, sentinel.ErrNotFound
}

func (s *InMemory) Save(_ context.Context, ent models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entities[ent.Kind]
	if !ok {
		byID = make(map[uuid.UUID]models.Entity)
		s.entities[ent.Kind] = byID
	}
	byID[ent.ID] = ent
	return nil
}

func (s *InMemory) List(_ context.Context, kind models.EntityKind, status *models.Status) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entity
	for _, ent := range s.entities[kind] {
		if status != nil && ent.Status != *status {
			continue
		}
		out = append(out, ent)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) ListExpiringJobs(_ context.Context, now time.Time) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entity
	for _, ent := range s.entities[models.KindJob] {
		if ent.ExpiresBefore(now) {
			out = append(out, ent)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) CountByStatus(_ context.Context, kind models.EntityKind) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Status]int)
	for _, ent := range s.entities[kind] {
		counts[ent.Status]++
	}
	return counts, nil
}

func (s *InMemory) CountCreatedBetween(_ context.Context, kind models.EntityKind, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, ent := range s.entities[kind] {
		if !ent.CreatedAt.Before(from) && ent.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}
