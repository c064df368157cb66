package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/activity"
)

// InMemoryStore keeps activity records in insertion order. It favors clarity
// over performance and doubles as the test fixture for the audit log.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []activity.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record activity.Record) (activity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]activity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]activity.Record{}, s.records...)
	// Stable sort keeps insertion order for equal timestamps; reversing first
	// makes later insertions win the tie in a descending feed.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID uuid.UUID) ([]activity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []activity.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ActorID == actorID {
			out = append(out, s.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Len reports the number of stored records. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
