// Package jsonfile implements the lingo key-value store as a single JSON
// document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/core/kv"
)

var errCorrupt = errors.New("corrupt store file")

// document is the on-disk layout.
type document struct {
	Entries map[string]kv.Entry `json:"entries"`
}

// KVStore implements kv.Store and kv.Updater on top of one JSON file.
// Goroutines in this process are serialized by mu, other processes by an
// flock on "<path>.lock".
type KVStore struct {
	path string
	log  zerolog.Logger
	mu   sync.RWMutex
}

var (
	_ kv.Store   = (*KVStore)(nil)
	_ kv.Updater = (*KVStore)(nil)
)

// NewKVStore returns a store backed by the file at path. The file and its
// directory are created on first write.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path, log: zerolog.Nop()}
}

// WithLogger sets the logger used to report recovered store files.
func (s *KVStore) WithLogger(l zerolog.Logger) *KVStore {
	s.log = l
	return s
}

// Path returns the file backing the store.
func (s *KVStore) Path() string {
	return s.path
}

// read runs fn against a snapshot of the document under a shared lock.
func (s *KVStore) read(fn func(doc document)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.flock(syscall.LOCK_SH, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		fn(doc)
		return nil
	})
}

// mutate runs fn under an exclusive lock and writes the document back when
// fn reports a change. An unparseable file is moved to "<path>.corrupt" and
// replaced by an empty document so writes keep working.
func (s *KVStore) mutate(fn func(doc document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flock(syscall.LOCK_EX, func() error {
		doc, err := s.load()
		if errors.Is(err, errCorrupt) {
			doc, err = s.quarantine(err)
		}
		if err != nil {
			return err
		}
		changed, err := fn(doc)
		if err != nil || !changed {
			return err
		}
		return s.save(doc)
	})
}

func (s *KVStore) flock(how int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Get returns the entry stored under key, or kv.ErrKeyNotFound.
func (s *KVStore) Get(_ context.Context, key string) (kv.Entry, error) {
	var (
		entry kv.Entry
		ok    bool
	)
	if err := s.read(func(doc document) { entry, ok = doc.Entries[key] }); err != nil {
		return kv.Entry{}, err
	}
	if !ok {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return entry, nil
}

// Set creates or replaces the value under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) {
		return value, nil
	})
}

// Update runs fn against the current value of key and stores the result.
// The exclusive lock is held across the whole read-modify-write, so
// concurrent updaters in any process never lose each other's writes.
func (s *KVStore) Update(_ context.Context, key string, fn kv.UpdateFunc) error {
	return s.mutate(func(doc document) (bool, error) {
		entry, exists := doc.Entries[key]
		next, err := fn(entry.Value, exists)
		if err != nil {
			return false, err
		}
		if exists && entry.Value == next {
			return false, nil
		}

		now := time.Now()
		if !exists {
			entry = kv.Entry{Key: key, CreatedAt: now}
		}
		entry.Value = next
		entry.UpdatedAt = now
		doc.Entries[key] = entry
		return true, nil
	})
}

// Delete removes key, returning kv.ErrKeyNotFound when it is absent.
func (s *KVStore) Delete(_ context.Context, key string) error {
	var missing bool
	err := s.mutate(func(doc document) (bool, error) {
		if _, ok := doc.Entries[key]; !ok {
			missing = true
			return false, nil
		}
		delete(doc.Entries, key)
		return true, nil
	})
	if err != nil {
		return err
	}
	if missing {
		return kv.ErrKeyNotFound
	}
	return nil
}

// List returns the entries whose key starts with prefix, ordered by key.
func (s *KVStore) List(_ context.Context, prefix string) ([]kv.Entry, error) {
	var entries []kv.Entry
	err := s.read(func(doc document) {
		for key, entry := range doc.Entries {
			if strings.HasPrefix(key, prefix) {
				entries = append(entries, entry)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b kv.Entry) int { return strings.Compare(a.Key, b.Key) })
	return entries, nil
}

// load reads the document. A missing or empty file is an empty store.
func (s *KVStore) load() (document, error) {
	doc := document{Entries: map[string]kv.Entry{}}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return doc, nil
	case err != nil:
		return document{}, fmt.Errorf("read %s: %w", s.path, err)
	case len(data) == 0:
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: parse %s: %w", errCorrupt, s.path, err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]kv.Entry{}
	}
	return doc, nil
}

// quarantine moves the corrupt file aside and returns an empty document.
func (s *KVStore) quarantine(cause error) (document, error) {
	aside := s.path + ".corrupt"
	if err := os.Rename(s.path, aside); err != nil {
		return document{}, fmt.Errorf("move aside %s: %w", s.path, err)
	}
	s.log.Warn().Err(cause).Str("moved_to", aside).Msg("store file was corrupt, starting empty")
	return document{Entries: map[string]kv.Entry{}}, nil
}

// save replaces the file through a temp file and rename.
func (s *KVStore) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.path, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
