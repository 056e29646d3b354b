package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/core/kv"
	"github.com/hay-kot/lingo/internal/core/translation"
)

// errNoChange aborts a kv update when the partition is left as it was.
var errNoChange = errors.New("no change")

// Store reads and writes history partitions in a kv.Store.
//
// Each mutation is a read-modify-write cycle run under a per-partition mutex,
// so concurrent appends to one partition never lose an update while different
// partitions proceed independently. When the backend also implements
// kv.Updater the cycle runs inside the backend's own lock, which extends the
// guarantee to other processes sharing the same storage.
type Store struct {
	kv     kv.Store
	limits Limits
	log    zerolog.Logger

	mu    sync.Mutex
	locks map[Partition]*sync.Mutex
}

// NewStore creates a Store over the given kv backend.
func NewStore(store kv.Store, limits Limits, log zerolog.Logger) *Store {
	return &Store{
		kv:     store,
		limits: limits,
		log:    log.With().Str("component", "history").Logger(),
		locks:  make(map[Partition]*sync.Mutex),
	}
}

// Limit returns the configured cap for p.
func (s *Store) Limit(p Partition) int {
	return s.limits.For(p)
}

func (s *Store) lock(p Partition) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.locks[p]
	if !ok {
		m = &sync.Mutex{}
		s.locks[p] = m
	}
	return m
}

// List returns the partition newest first. A missing or unreadable partition
// is reported as empty.
func (s *Store) List(ctx context.Context, p Partition) []translation.Record {
	entry, err := s.kv.Get(ctx, p.Key())
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.log.Warn().Err(err).Str("partition", string(p)).Msg("read history partition")
		}
		return []translation.Record{}
	}
	return s.decode(p, entry.Value)
}

// Get returns the record with the given id. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, p Partition, id string) (translation.Record, error) {
	for _, r := range s.List(ctx, p) {
		if r.ID == id {
			return r, nil
		}
	}
	return translation.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Append puts r at the head of the partition and trims the tail so the list
// holds at most maxLen entries. A record already stored under the same id is
// dropped first. A missing id or timestamp is assigned; maxLen < 1 uses the
// configured cap. The stored list is returned.
func (s *Store) Append(ctx context.Context, p Partition, r translation.Record, maxLen int) ([]translation.Record, error) {
	if r.ID == "" {
		r.ID = translation.NewID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if maxLen < 1 {
		maxLen = s.Limit(p)
	}

	return s.mutate(ctx, p, func(list []translation.Record) ([]translation.Record, bool) {
		return prepend(list, r, maxLen), true
	})
}

// Remove deletes every record with the given id and returns the remaining
// list. Removing an id that is not present leaves storage untouched.
func (s *Store) Remove(ctx context.Context, p Partition, id string) ([]translation.Record, error) {
	return s.mutate(ctx, p, func(list []translation.Record) ([]translation.Record, bool) {
		next := without(list, id)
		return next, len(next) != len(list)
	})
}

// Clear empties the partition.
func (s *Store) Clear(ctx context.Context, p Partition) error {
	_, err := s.mutate(ctx, p, func(list []translation.Record) ([]translation.Record, bool) {
		return []translation.Record{}, len(list) > 0
	})
	return err
}

// mutate runs fn against the current partition under the partition lock and
// persists the result when fn reports a change.
func (s *Store) mutate(ctx context.Context, p Partition, fn func([]translation.Record) ([]translation.Record, bool)) ([]translation.Record, error) {
	m := s.lock(p)
	m.Lock()
	defer m.Unlock()

	var result []translation.Record

	apply := func(current string, found bool) (string, error) {
		list := []translation.Record{}
		if found {
			list = s.decode(p, current)
		}

		next, changed := fn(list)
		result = next
		if !changed {
			return "", errNoChange
		}
		return translation.Encode(next)
	}

	var err error
	if u, ok := s.kv.(kv.Updater); ok {
		err = u.Update(ctx, p.Key(), apply)
	} else {
		err = s.readModifyWrite(ctx, p, apply)
	}

	switch {
	case err == nil, errors.Is(err, errNoChange):
		return result, nil
	default:
		s.log.Warn().Err(err).Str("partition", string(p)).Msg("write history partition")
		return nil, fmt.Errorf("%w: %s: %w", ErrStorageWrite, p, err)
	}
}

// readModifyWrite is the fallback cycle for backends without kv.Updater. The
// partition mutex held by the caller is the only guard.
func (s *Store) readModifyWrite(ctx context.Context, p Partition, fn kv.UpdateFunc) error {
	var (
		current string
		found   bool
	)

	entry, err := s.kv.Get(ctx, p.Key())
	switch {
	case err == nil:
		current, found = entry.Value, true
	case errors.Is(err, kv.ErrKeyNotFound):
	default:
		return fmt.Errorf("read: %w", err)
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, p.Key(), next)
}

func (s *Store) decode(p Partition, blob string) []translation.Record {
	list, err := translation.Decode(blob)
	if err != nil {
		s.log.Warn().Err(err).Str("partition", string(p)).Msg("discarding corrupt history partition")
		return []translation.Record{}
	}
	return list
}

// prepend returns a new list with r first, any older copy of r removed and
// the tail trimmed to maxLen.
func prepend(list []translation.Record, r translation.Record, maxLen int) []translation.Record {
	next := make([]translation.Record, 0, min(len(list)+1, maxLen))
	next = append(next, r)
	for _, existing := range list {
		if len(next) == maxLen {
			break
		}
		if existing.ID != r.ID {
			next = append(next, existing)
		}
	}
	return next
}

func without(list []translation.Record, id string) []translation.Record {
	return slices.DeleteFunc(slices.Clone(list), func(r translation.Record) bool {
		return r.ID == id
	})
}
