// Package kv defines the persistent key-value store that backs lingo's
// history partitions, user accounts and sessions.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Entry is a stored value with metadata.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines persistence operations for string blobs addressed by key.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// UpdateFunc receives the current value of a key (found is false when the key
// is absent) and returns the value to store. Returning an error aborts the
// update and nothing is written.
type UpdateFunc func(current string, found bool) (string, error)

// Updater is implemented by stores that can run a read-modify-write cycle
// while holding their own lock, so that writers in other processes cannot
// interleave with it.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
