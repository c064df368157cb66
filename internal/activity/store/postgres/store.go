package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/activity"
)

// Store persists activity records in PostgreSQL. The table is append-only;
// a bigserial seq column breaks CreatedAt ties by insertion order.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL activity store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, record activity.Record) (activity.Record, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO activity_records (
			id, created_at, actor_id, action_type, target_kind, target_id,
			reason, request_id, client_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.CreatedAt,
		record.ActorID,
		string(record.Action),
		record.TargetKind,
		record.TargetID,
		record.Reason,
		record.RequestID,
		record.ClientIP,
		record.UserAgent,
	)
	if err != nil {
		return activity.Record{}, fmt.Errorf("insert activity record: %w", err)
	}
	return record, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]activity.Record, error) {
	query := `
		SELECT id, created_at, actor_id, action_type, target_kind, target_id,
		       reason, request_id, client_ip, user_agent
		FROM activity_records
		ORDER BY created_at DESC, seq DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) ListByActor(ctx context.Context, actorID uuid.UUID) ([]activity.Record, error) {
	query := `
		SELECT id, created_at, actor_id, action_type, target_kind, target_id,
		       reason, request_id, client_ip, user_agent
		FROM activity_records
		WHERE actor_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := s.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("query activity records by actor: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]activity.Record, error) {
	var records []activity.Record
	for rows.Next() {
		var (
			record activity.Record
			action string
		)
		err := rows.Scan(
			&record.ID,
			&record.CreatedAt,
			&record.ActorID,
			&action,
			&record.TargetKind,
			&record.TargetID,
			&record.Reason,
			&record.RequestID,
			&record.ClientIP,
			&record.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		record.Action = activity.ActionType(action)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity records: %w", err)
	}
	return records, nil
}
