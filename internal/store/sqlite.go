package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hengadev/recordseal/internal/sealerr"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLite is the default entry store, backed by a single SQLite file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema
// exists. It is safe to call repeatedly on the same path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path cannot be empty", sealerr.ErrInvalidConfiguration)
	}

	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to create database directory '%s': %w", dir, err))
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to open database at '%s': %w", path, err))
	}

	// SQLite allows one writer; a single connection also keeps :memory: databases
	// from being recreated per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("database connection test failed for '%s': %w", path, err))
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, sealerr.NewStorageError(sealerr.Load, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to create database schema in '%s': %w", path, err))
	}

	return &SQLite{db: db, path: path}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Append stores e and returns its entry id.
func (s *SQLite) Append(ctx context.Context, e Entry) (string, error) {
	e = e.prepare()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO record_entries (entry_id, identifier, fingerprint, ciphertext, suite, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Identifier, e.Fingerprint, e.Ciphertext, e.Suite, e.CreatedAt)
	if err != nil {
		return "", sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to insert entry for '%s': %w", e.Identifier, err))
	}
	return e.ID, nil
}

// Latest returns the most recently appended entry for identifier.
func (s *SQLite) Latest(ctx context.Context, identifier string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT entry_id, identifier, fingerprint, ciphertext, suite, created_at
		FROM record_entries
		WHERE identifier = ?
		ORDER BY seq DESC
		LIMIT 1
	`, identifier)

	var e Entry
	err := row.Scan(&e.ID, &e.Identifier, &e.Fingerprint, &e.Ciphertext, &e.Suite, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, sealerr.NewNotFoundError(identifier, sealerr.Load)
	}
	if err != nil {
		return Entry{}, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to read latest entry for '%s': %w", identifier, err))
	}
	return e, nil
}

// Count returns how many entries exist for identifier.
func (s *SQLite) Count(ctx context.Context, identifier string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM record_entries WHERE identifier = ?`, identifier).Scan(&n)
	if err != nil {
		return 0, sealerr.NewStorageError(sealerr.Load, err)
	}
	return n, nil
}

// PutKey stores the encryption key used for entryID.
func (s *SQLite) PutKey(ctx context.Context, entryID, identifier string, key []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO record_keys (entry_id, identifier, key, created_at) VALUES (?, ?, ?, ?)
	`, entryID, identifier, key, time.Now().UTC())
	if err != nil {
		return sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to store key for entry '%s': %w", entryID, err))
	}
	return nil
}

// GetKey returns the encryption key stored for entryID.
func (s *SQLite) GetKey(ctx context.Context, entryID string) ([]byte, error) {
	var key []byte
	err := s.db.QueryRowContext(ctx, `SELECT key FROM record_keys WHERE entry_id = ?`, entryID).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no key stored for entry '%s'", sealerr.ErrKeyUnavailable, entryID)
	}
	if err != nil {
		return nil, sealerr.NewStorageError(sealerr.Load, err)
	}
	return key, nil
}

// Ping verifies the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return sealerr.NewStorageError(sealerr.Load, fmt.Errorf("sqlite '%s' unreachable: %w", s.path, err))
	}
	return nil
}

// DeleteKey removes the key stored for entryID, if any.
func (s *SQLite) DeleteKey(ctx context.Context, entryID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM record_keys WHERE entry_id = ?`, entryID); err != nil {
		return sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to delete key for entry '%s': %w", entryID, err))
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
