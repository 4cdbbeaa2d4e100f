// Package sqlite persists journeys in a SQLite database through modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/serialization"
	_ "modernc.org/sqlite"
)

// Store implements ports.JourneyStore for SQLite.
type Store struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// New wraps an open database. Call CreateTables before first use.
func New(db *sql.DB, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Store{
		db:         db,
		serializer: serializer,
		tableName:  "journeys",
	}
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string, serializer *serialization.Serializer) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	s := New(db, serializer)
	if err := s.CreateTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// WithTableName overrides the default table name. Only letters, digits and
// underscore are accepted; anything else is ignored.
func (s *Store) WithTableName(name string) *Store {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
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
		INSERT OR REPLACE INTO %s (id, name, is_active, updated_at, codec, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		j.ID, j.Name, j.IsActive, j.UpdatedAt.UnixNano(), s.serializer.Name(), data)
	if err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}
	return nil
}

// Load retrieves a journey by id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE id = ?", s.tableName)

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("failed to load journey: %w", err)
	}
	return s.serializer.UnmarshalJourney(data)
}

// Delete removes a journey. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	return nil
}

// List returns summaries ordered by id, read from the indexed columns only.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	query := fmt.Sprintf("SELECT id, name, is_active, updated_at FROM %s ORDER BY id", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	out := []domain.Summary{}
	for rows.Next() {
		var sum domain.Summary
		var updated int64
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.IsActive, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan journey row: %w", err)
		}
		sum.UpdatedAt = time.Unix(0, updated).UTC()
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
			is_active INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			codec TEXT NOT NULL,
			payload BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_updated_at ON %s (updated_at);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
