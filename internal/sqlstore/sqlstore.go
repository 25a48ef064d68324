// Package sqlstore implements driver.Driver over database/sql for SQLite
// engines. The native and fallback adapters differ only in the registered
// database/sql driver name they open.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/unkn0wn-root/litecache/driver"
)

const table = "litecache_entries"

// Store is a SQLite-backed driver.Driver.
type Store struct {
	db   *sql.DB
	kind driver.Kind
}

var _ driver.Driver = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path using the
// database/sql driver registered as sqlDriver.
func Open(kind driver.Kind, sqlDriver, path string) (*Store, error) {
	if path == "" {
		return nil, &driver.OpenError{Driver: kind, Path: path, Err: errors.New("empty path")}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &driver.OpenError{Driver: kind, Path: path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}

	db, err := sql.Open(sqlDriver, path)
	if err != nil {
		return nil, &driver.OpenError{Driver: kind, Path: path, Err: err}
	}
	// single writer; keeps :memory: databases alive across calls too
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &driver.OpenError{Driver: kind, Path: path, Err: err}
	}
	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, &driver.OpenError{Driver: kind, Path: path, Err: err}
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, &driver.OpenError{Driver: kind, Path: path, Err: fmt.Errorf("create tables: %w", err)}
	}
	return &Store{db: db, kind: kind}, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		// journal_mode returns a row; Exec discards it on both engines
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS ` + table + ` (
		key         TEXT PRIMARY KEY,
		value       BLOB NOT NULL,
		created_at  INTEGER NOT NULL,
		expires_at  INTEGER NOT NULL,
		accessed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_` + table + `_expires_at ON ` + table + ` (expires_at);
	`
	_, err := db.Exec(query)
	return err
}

func (s *Store) Kind() driver.Kind { return s.kind }

func (s *Store) Put(ctx context.Context, e driver.Entry) error {
	query := `
	INSERT INTO ` + table + ` (key, value, created_at, expires_at, accessed_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		created_at = excluded.created_at,
		expires_at = excluded.expires_at,
		accessed_at = excluded.accessed_at
	`
	value := e.Value
	if value == nil {
		value = []byte{} // NOT NULL column
	}
	_, err := s.db.ExecContext(ctx, query, e.Key, value,
		driver.Millis(e.CreatedAt), driver.Millis(e.ExpiresAt), driver.Millis(e.AccessedAt))
	return driver.Fault("put", e.Key, err)
}

func (s *Store) Get(ctx context.Context, key string) (driver.Entry, bool, error) {
	query := "SELECT value, created_at, expires_at, accessed_at FROM " + table + " WHERE key = ?"
	var (
		value                          []byte
		createdAt, expiresAt, accessed int64
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &createdAt, &expiresAt, &accessed)
	if errors.Is(err, sql.ErrNoRows) {
		return driver.Entry{}, false, nil
	}
	if err != nil {
		return driver.Entry{}, false, driver.Fault("get", key, err)
	}
	return driver.Entry{
		Key:        key,
		Value:      value,
		CreatedAt:  driver.FromMillis(createdAt),
		ExpiresAt:  driver.FromMillis(expiresAt),
		AccessedAt: driver.FromMillis(accessed),
	}, true, nil
}

func (s *Store) Touch(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET accessed_at = ? WHERE key = ?", driver.Millis(at), key)
	return driver.Fault("touch", key, err)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE key = ?", key)
	return driver.Fault("delete", key, err)
}

func (s *Store) ListExpired(ctx context.Context, now time.Time) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := s.db.QueryContext(ctx, "SELECT key FROM "+table+" WHERE expires_at <= ?", driver.Millis(now))
		if err != nil {
			yield("", driver.Fault("list_expired", "", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				yield("", driver.Fault("list_expired", "", err))
				return
			}
			if !yield(key, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", driver.Fault("list_expired", "", err))
		}
	}
}

func (s *Store) Scan(ctx context.Context) iter.Seq2[driver.Entry, error] {
	return func(yield func(driver.Entry, error) bool) {
		query := "SELECT key, created_at, expires_at, accessed_at FROM " + table + " ORDER BY created_at, key"
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			yield(driver.Entry{}, driver.Fault("scan", "", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				key                            string
				createdAt, expiresAt, accessed int64
			)
			if err := rows.Scan(&key, &createdAt, &expiresAt, &accessed); err != nil {
				yield(driver.Entry{}, driver.Fault("scan", "", err))
				return
			}
			e := driver.Entry{
				Key:        key,
				CreatedAt:  driver.FromMillis(createdAt),
				ExpiresAt:  driver.FromMillis(expiresAt),
				AccessedAt: driver.FromMillis(accessed),
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(driver.Entry{}, driver.Fault("scan", "", err))
		}
	}
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, driver.Fault("count", "", err)
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	return driver.Fault("clear", "", err)
}

func (s *Store) Close() error {
	return s.db.Close()
}
