package activity

import (
	"context"

	"github.com/google/uuid"
)

// Store is the append-only persistence boundary for activity records.
// Implementations never update or delete an existing record.
type Store interface {
	// Append persists a record, assigning ID and CreatedAt if absent, and
	// returns the stored record.
	Append(ctx context.Context, record Record) (Record, error)

	// ListRecent returns at most limit records ordered by CreatedAt
	// descending, ties broken by insertion order. Every call re-derives the
	// sequence from the persisted store.
	ListRecent(ctx context.Context, limit int) ([]Record, error)

	// ListByActor returns all records attributed to an actor, most recent
	// first.
	ListByActor(ctx context.Context, actorID uuid.UUID) ([]Record, error)
}
