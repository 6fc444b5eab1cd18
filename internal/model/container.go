package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingID       = errors.New("model: container id is required")
	ErrInvalidVersion  = errors.New("model: container version must be >= 1")
	ErrInvalidTimeline = errors.New("model: container updated_at precedes created_at")
)

// Container wraps a payload with identity, an optimistic-concurrency version
// and creation/update timestamps. Version increases by exactly 1 on every
// successful mutation of a given id.
type Container[T any] struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      T         `json:"data"`
}

// New wraps data in a fresh container: random UUIDv4 identity, version 1,
// createdAt = updatedAt = now.
func New[T any](data T, now time.Time) Container[T] {
	return Container[T]{
		ID:        uuid.NewString(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
}

// Touch returns a copy with the version bumped and updatedAt set to now.
// Pure function; identity, createdAt and data are unchanged and nothing is
// written to storage.
func Touch[T any](c Container[T], now time.Time) Container[T] {
	c.Version++
	c.UpdatedAt = now
	return c
}

func (c Container[T]) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Version < 1 {
		return ErrInvalidVersion
	}
	if c.CreatedAt.IsZero() {
		return errors.New("model: container created_at is required")
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidTimeline
	}
	return nil
}
