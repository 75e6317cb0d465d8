// Package storage is the client's durable key/value store: JSON values under
// string keys in a local SQLite database. The Store wrapper never returns
// errors to callers; failures are logged and turned into a default value or a
// false success flag, so a broken disk degrades to "not saved".
package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/todoclient/internal/dbx"
	"github.com/dmitrijs2005/todoclient/internal/filex"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

const probeKey = "__storage_probe__"

type Store struct {
	db   *sql.DB
	repo Repository
	log  logging.Logger
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, repo: NewSQLiteRepository(db), log: log.With("component", "storage")}
}

// Open opens and migrates the database at path and wraps it in a Store. The
// parent directory is created when missing.
func Open(ctx context.Context, path string, log logging.Logger) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := OpenDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewStore(db, log), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key decoded as T, or def when the key is
// missing or cannot be read or decoded.
func Get[T any](ctx context.Context, s *Store, key string, def T) T {
	var v T
	if !s.Lookup(ctx, key, &v) {
		return def
	}
	return v
}

// Lookup decodes the value under key into dst and reports whether it did.
func (s *Store) Lookup(ctx context.Context, key string, dst any) bool {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "storage read failed", "key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn(ctx, "stored value is not decodable", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn(ctx, "value is not serialisable", "key", key, "error", err)
		return false
	}
	if err := s.repo.Set(ctx, key, raw); err != nil {
		s.log.Warn(ctx, "storage write failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetMany stores all values in one transaction: either every key is written
// or none is.
func (s *Store) SetMany(ctx context.Context, values map[string]any) bool {
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			s.log.Warn(ctx, "value is not serialisable", "key", key, "error", err)
			return false
		}
		encoded[key] = raw
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for key, raw := range encoded {
			if err := repo.Set(ctx, key, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "storage batch write failed", "keys", len(values), "error", err)
		return false
	}
	return true
}

// Remove deletes keys in one transaction. Removing a missing key succeeds.
func (s *Store) Remove(ctx context.Context, keys ...string) bool {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, key := range keys {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "storage delete failed", "keys", keys, "error", err)
		return false
	}
	return true
}

// Available probes the store with a write and a delete.
func (s *Store) Available(ctx context.Context) bool {
	if err := s.repo.Set(ctx, probeKey, []byte(`"probe"`)); err != nil {
		return false
	}
	return s.repo.Delete(ctx, probeKey) == nil
}
