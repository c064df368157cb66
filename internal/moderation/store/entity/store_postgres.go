package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/moderation/models"
	"backoffice/pkg/platform/sentinel"
)

// PostgresStore persists entities in PostgreSQL, keyed (kind, id).
// Attributes round-trip through a JSONB column; the lifecycle engine never
// inspects them.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entityColumns = `kind, id, status, display_name, attributes, expiry_date, created_at, updated_at`

func (s *PostgresStore) Find(ctx context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1 AND id = $2`
	ent, err := scanEntity(s.db.QueryRowContext(ctx, query, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entity{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Entity{}, fmt.Errorf("find entity: %w", err)
	}
	return ent, nil
}

// Save upserts the full entity row. Concurrent saves of the same (kind, id)
// resolve last-write-wins at the row level.
func (s *PostgresStore) Save(ctx context.Context, ent models.Entity) error {
	attrs, err := json.Marshal(ent.Attributes)
	if err != nil {
		return fmt.Errorf("marshal entity attributes: %w", err)
	}

	query := `
		INSERT INTO entities (kind, id, status, display_name, attributes, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (kind, id) DO UPDATE SET
			status = EXCLUDED.status,
			display_name = EXCLUDED.display_name,
			attributes = EXCLUDED.attributes,
			expiry_date = EXCLUDED.expiry_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		string(ent.Kind),
		ent.ID,
		string(ent.Status),
		ent.DisplayName,
		attrs,
		nullTime(ent.ExpiryDate),
		ent.CreatedAt,
		ent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, kind models.EntityKind, status *models.Status) ([]models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1`
	args := []any{string(kind)}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

func (s *PostgresStore) ListExpiringJobs(ctx context.Context, now time.Time) ([]models.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE kind = $1 AND status = $2 AND expiry_date IS NOT NULL AND expiry_date < $3
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, string(models.KindJob), string(models.StatusActive), now)
	if err != nil {
		return nil, fmt.Errorf("list expiring jobs: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

func (s *PostgresStore) CountByStatus(ctx context.Context, kind models.EntityKind) (map[models.Status]int, error) {
	query := `SELECT status, COUNT(*) FROM entities WHERE kind = $1 GROUP BY status`
	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("count entities by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) CountCreatedBetween(ctx context.Context, kind models.EntityKind, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM entities WHERE kind = $1 AND created_at >= $2 AND created_at < $3`
	var count int
	if err := s.db.QueryRowContext(ctx, query, string(kind), from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entities created between: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (models.Entity, error) {
	var (
		ent    models.Entity
		kind   string
		status string
		attrs  []byte
		expiry sql.NullTime
	)
	err := row.Scan(&kind, &ent.ID, &status, &ent.DisplayName, &attrs, &expiry, &ent.CreatedAt, &ent.UpdatedAt)
	if err != nil {
		return models.Entity{}, err
	}
	ent.Kind = models.EntityKind(kind)
	ent.Status = models.Status(status)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &ent.Attributes); err != nil {
			return models.Entity{}, fmt.Errorf("unmarshal entity attributes: %w", err)
		}
	}
	if expiry.Valid {
		t := expiry.Time
		ent.ExpiryDate = &t
	}
	return ent, nil
}

func scanEntities(rows *sql.Rows) ([]models.Entity, error) {
	var entities []models.Entity
	for rows.Next() {
		ent, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, ent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
