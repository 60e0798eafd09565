// Package local is the fallback key/value storage used while nobody is
// signed in. Each key holds one JSON document, mirroring the browser's
// localStorage layout of the original web client.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/expenseflow/internal/errs"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at dbPath and applies
// pending migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// SQLite allows one writer; keep a single connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetRaw returns the stored text for key and whether it exists.
func (s *Store) GetRaw(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.NewDatabaseError("read", "failed to read local key "+key, err)
	}
	return value, true, nil
}

// Get decodes the JSON stored under key into dst. found is false when the
// key is absent; a decode failure is returned as an error.
func (s *Store) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	raw, ok, err := s.GetRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode local key %s: %w", key, err)
	}
	return true, nil
}

func unmarshal(raw string, dst any) error {
	return json.Unmarshal([]byte(raw), dst)
}

// Set stores v as JSON under key.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode local key %s: %w", key, err)
	}
	return s.SetRaw(ctx, key, string(b))
}

func (s *Store) SetRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return errs.NewDatabaseError("update", "failed to write local key "+key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
			return errs.NewDatabaseError("delete", "failed to remove local key "+key, err)
		}
	}
	return nil
}
