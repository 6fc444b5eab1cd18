package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"daygoal/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

var ErrNotFound = errors.New("storage: not found")

// DB wraps the sqlite handle shared by every collection store.
type DB struct {
	db *sql.DB
}

func NewDB(db *sql.DB) (*DB, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &DB{db: db}, nil
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Store persists one full collection of containers under a fixed key. The
// whole collection is loaded and rewritten as a single JSON blob, so a
// reader never observes a partial write. It is the immediately-consistent
// source of truth for all reads; remote sync reconciles against it later.
type Store[T any] struct {
	db      *DB
	key     string
	initial []model.Container[T]
}

// NewStore binds a collection store to a storage key. The initial value is
// returned by Read when the key is absent or the persisted payload fails
// schema validation.
func NewStore[T any](db *DB, key string, initial []model.Container[T]) (*Store[T], error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if key == "" {
		return nil, errors.New("storage: empty collection key")
	}
	return &Store[T]{db: db, key: key, initial: initial}, nil
}

// Read returns the persisted collection. Corrupt or unvalidatable payloads
// are discarded and replaced by the initial value rather than propagated.
func (s *Store[T]) Read(ctx context.Context) ([]model.Container[T], error) {
	row := s.db.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE key = ?`, s.key)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.initialCopy(), nil
		}
		return nil, fmt.Errorf("read collection %s: %w", s.key, err)
	}

	var items []model.Container[T]
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return s.initialCopy(), nil
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return s.initialCopy(), nil
		}
	}
	return items, nil
}

// Write serializes and persists the full collection in one statement.
func (s *Store[T]) Write(ctx context.Context, items []model.Container[T]) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", s.key, err)
	}
	_, err = s.db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO collections (key, payload, updated_at)
		VALUES (?, ?, ?)`,
		s.key, string(payload), time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("write collection %s: %w", s.key, err)
	}
	return nil
}

// Update replaces the entry matching item's id and persists the collection.
// A missing id is a data-integrity fault reported as ErrNotFound; the
// persisted collection is left untouched.
func (s *Store[T]) Update(ctx context.Context, item model.Container[T]) error {
	items, err := s.Read(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		return ErrNotFound
	}
	return s.Write(ctx, items)
}

// Create appends the item and persists the collection. A duplicate id is a
// caller contract violation.
func (s *Store[T]) Create(ctx context.Context, item model.Container[T]) error {
	items, err := s.Read(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == item.ID {
			return fmt.Errorf("storage: duplicate id %s in collection %s", item.ID, s.key)
		}
	}
	return s.Write(ctx, append(items, item))
}

func (s *Store[T]) initialCopy() []model.Container[T] {
	out := make([]model.Container[T], len(s.initial))
	copy(out, s.initial)
	return out
}
