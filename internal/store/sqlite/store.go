// Package sqlite provides a SQLite-backed host ledger.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/store/sqlite/migrations"
)

// Store persists ledger keys in a single SQLite table.
type Store struct {
	sqlDB *sql.DB
}

var _ interface {
	host.Storage
	host.Batcher
} = (*Store)(nil)

// Open opens a SQLite ledger and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Get returns the value under key, or nil when absent.
func (s *Store) Get(key []byte) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var v []byte
	err := s.sqlDB.QueryRow(`SELECT v FROM ledger WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger key: %w", err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

// Set writes value under key.
func (s *Store) Set(key, value []byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.Exec(upsertSQL, key, nonNil(value)); err != nil {
		return fmt.Errorf("set ledger key: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key []byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.Exec(`DELETE FROM ledger WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete ledger key: %w", err)
	}
	return nil
}

// WriteBatch applies ops in one SQL transaction.
func (s *Store) WriteBatch(ops []host.Op) error {
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, op := range ops {
		if op.Value == nil {
			_, err = tx.Exec(`DELETE FROM ledger WHERE k = ?`, op.Key)
		} else {
			_, err = tx.Exec(upsertSQL, op.Key, op.Value)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Count returns the number of keys whose prefix is prefix.
func (s *Store) Count(ctx context.Context, prefix []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT k FROM ledger WHERE k >= ? ORDER BY k`, nonNil(prefix))
	if err != nil {
		return 0, fmt.Errorf("scan ledger: %w", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var k []byte
		if err := rows.Scan(&k); err != nil {
			return 0, fmt.Errorf("scan ledger: %w", err)
		}
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		n++
	}
	return n, rows.Err()
}

const upsertSQL = `INSERT INTO ledger (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
