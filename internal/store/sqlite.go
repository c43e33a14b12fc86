package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("create layout db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening layout db: %w", err)
	}
	// One connection: an in-memory database is per connection, and there is
	// only ever one writer.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS layouts (
			scope    TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating layouts table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, scope string) (*Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM layouts WHERE scope = ?`, Key(scope),
	).Scan(&payload)
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return decode([]byte(payload)), nil
	default:
		return nil, fmt.Errorf("loading layout: %w", err)
	}
}

func (s *SQLiteStore) Save(ctx context.Context, scope string, snap *Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layouts (scope, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			payload  = excluded.payload,
			saved_at = excluded.saved_at`,
		Key(scope), string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, scope string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE scope = ?`, Key(scope))
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
