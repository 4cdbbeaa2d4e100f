// Package postgres persists journeys in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/serialization"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements ports.JourneyStore for PostgreSQL.
type Store struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Store{
		pool:       pool,
		serializer: serializer,
		tableName:  "journeys",
	}
}

// Connect dials dsn and ensures the schema exists.
func Connect(ctx context.Context, dsn string, serializer *serialization.Serializer) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	s := New(pool, serializer)
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Save upserts the journey.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("%w: journey id", domain.ErrMissingRequiredField)
	}

	data, err := s.serializer.MarshalJourney(j)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, is_active, updated_at, codec, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at,
			codec = EXCLUDED.codec,
			payload = EXCLUDED.payload
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query, j.ID, j.Name, j.IsActive, j.UpdatedAt, s.serializer.Name(), data)
	if err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}
	return nil
}

// Load retrieves a journey by id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE id = $1", s.tableName)

	var data []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("failed to load journey: %w", err)
	}
	return s.serializer.UnmarshalJourney(data)
}

// Delete removes a journey. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	return nil
}

// List returns summaries ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	query := fmt.Sprintf("SELECT id, name, is_active, updated_at FROM %s ORDER BY id", s.tableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	out := []domain.Summary{}
	for rows.Next() {
		var sum domain.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.IsActive, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journey row: %w", err)
		}
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journeys: %w", err)
	}
	return out, nil
}

// CreateTables creates the necessary database tables.
func (s *Store) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL,
			codec TEXT NOT NULL,
			payload BYTEA NOT NULL
		)
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
