// Package memstore is an in-memory kv.Store. Data lives for the life of the
// process.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hay-kot/lingo/internal/core/kv"
)

// Store is a map-backed kv.Store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]kv.Entry
}

var (
	_ kv.Store   = (*Store)(nil)
	_ kv.Updater = (*Store)(nil)
)

func New() *Store {
	return &Store{entries: make(map[string]kv.Entry)}
}

func (s *Store) Get(_ context.Context, key string) (kv.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return entry, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) { return value, nil })
}

func (s *Store) Update(_ context.Context, key string, fn kv.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	next, err := fn(entry.Value, exists)
	if err != nil {
		return err
	}

	now := time.Now()
	if !exists {
		entry = kv.Entry{Key: key, CreatedAt: now}
	}
	entry.Value = next
	entry.UpdatedAt = now
	s.entries[key] = entry
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return kv.ErrKeyNotFound
	}
	delete(s.entries, key)
	return nil
}

// List returns entries whose key has the given prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]kv.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []kv.Entry
	for k, entry := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
