package sqlstore

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lingo/internal/core/kv"
)

// openTestStore connects to LINGO_TEST_DATABASE_URL, skipping when unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("LINGO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LINGO_TEST_DATABASE_URL not set")
	}

	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Exec("DELETE FROM kv_entries WHERE starts_with(key, ?)", "test:").Error
		_ = s.Close()
	})
	return s
}

func TestStore_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "test:missing")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "test:a", "1"))
	require.NoError(t, s.Set(ctx, "test:b", "2"))

	entry, err := s.Get(ctx, "test:a")
	require.NoError(t, err)
	assert.Equal(t, "1", entry.Value)

	entries, err := s.List(ctx, "test:")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, s.Delete(ctx, "test:a"))
	assert.ErrorIs(t, s.Delete(ctx, "test:a"), kv.ErrKeyNotFound)
}

func TestStore_ConcurrentUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const writers = 8

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, "test:counter", func(current string, found bool) (string, error) {
				n := 0
				if found {
					n, _ = strconv.Atoi(current)
				}
				return strconv.Itoa(n + 1), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entry, err := s.Get(ctx, "test:counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(writers), entry.Value)
}
