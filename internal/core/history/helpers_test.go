package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/core/kv"
	"github.com/hay-kot/lingo/internal/core/translation"
)

var errDiskFull = errors.New("disk full")

// plainStore is a kv.Store without kv.Updater, so the Store falls back to its
// own get-then-set cycle. Writes can be failed or held at a gate.
type plainStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int

	failWrites bool
	gate       chan struct{}
}

func newPlainStore() *plainStore {
	return &plainStore{data: make(map[string]string)}
}

func (s *plainStore) Get(_ context.Context, key string) (kv.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return kv.Entry{Key: key, Value: v}, nil
}

func (s *plainStore) Set(_ context.Context, key, value string) error {
	if s.gate != nil {
		<-s.gate
	}

	// widen the window between read and write so unguarded cycles interleave
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return errDiskFull
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *plainStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *plainStore) List(_ context.Context, prefix string) ([]kv.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []kv.Entry
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, kv.Entry{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *plainStore) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = v
}

func (s *plainStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func newTestStore(backend kv.Store) *Store {
	return NewStore(backend, DefaultLimits(), zerolog.Nop())
}

func rec(n int) translation.Record {
	return translation.Record{
		ID:             fmt.Sprintf("r%02d", n),
		SourceText:     fmt.Sprintf("hello %d", n),
		TranslatedText: fmt.Sprintf("hola %d", n),
		SourceLang:     "en",
		TargetLang:     "es",
		Timestamp:      time.Date(2024, 3, 1, 12, 0, n, 0, time.UTC),
	}
}

func ids(list []translation.Record) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func mustAppend(t *testing.T, s *Store, p Partition, r translation.Record) []translation.Record {
	t.Helper()
	list, err := s.Append(context.Background(), p, r, s.Limit(p))
	if err != nil {
		t.Fatalf("Append(%s) failed: %v", r.ID, err)
	}
	return list
}
