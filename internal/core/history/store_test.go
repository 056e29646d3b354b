package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lingo/internal/core/kv"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/store/jsonfile"
	"github.com/hay-kot/lingo/internal/store/memstore"
)

func backends(t *testing.T) map[string]func() kv.Store {
	return map[string]func() kv.Store{
		"plain":    func() kv.Store { return newPlainStore() },
		"memstore": func() kv.Store { return memstore.New() },
		"jsonfile": func() kv.Store { return jsonfile.NewKVStore(filepath.Join(t.TempDir(), "kv.json")) },
	}
}

func TestStore_ElevenIntoTen(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(newBackend())

			for i := 1; i <= 11; i++ {
				mustAppend(t, s, Recent, rec(i))
			}

			list := s.List(context.Background(), Recent)
			require.Len(t, list, 10)
			assert.Equal(t, "r11", list[0].ID)
			assert.Equal(t, "r02", list[9].ID)
			assert.NotContains(t, ids(list), "r01")
		})
	}
}

func TestStore_AppendThenRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(memstore.New())

	mustAppend(t, s, Recent, rec(1))
	list := mustAppend(t, s, Recent, rec(2))
	assert.Equal(t, []string{"r02", "r01"}, ids(list))

	list, err := s.Remove(ctx, Recent, "r01")
	require.NoError(t, err)
	assert.Equal(t, []string{"r02"}, ids(list))

	assert.Equal(t, []string{"r02"}, ids(s.List(ctx, Recent)))
}

func TestStore_CapAndOrder(t *testing.T) {
	tests := []struct {
		name    string
		appends int
		maxLen  int
		want    []string
	}{
		{name: "under cap", appends: 3, maxLen: 5, want: []string{"r03", "r02", "r01"}},
		{name: "at cap", appends: 3, maxLen: 3, want: []string{"r03", "r02", "r01"}},
		{name: "over cap", appends: 5, maxLen: 2, want: []string{"r05", "r04"}},
		{name: "cap of one", appends: 4, maxLen: 1, want: []string{"r04"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(memstore.New())

			for i := 1; i <= tt.appends; i++ {
				list, err := s.Append(ctx, Notes, rec(i), tt.maxLen)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(list), tt.maxLen)
				assert.Equal(t, rec(i).ID, list[0].ID)
			}

			assert.Equal(t, tt.want, ids(s.List(ctx, Notes)))
		})
	}
}

func TestStore_AppendDefaultsLimit(t *testing.T) {
	s := NewStore(memstore.New(), Limits{Recent: 3}, zerolog.Nop())

	for i := 1; i <= 5; i++ {
		_, err := s.Append(context.Background(), Recent, rec(i), 0)
		require.NoError(t, err)
	}
	assert.Len(t, s.List(context.Background(), Recent), 3)
}

func TestStore_AppendDuplicateMovesToFront(t *testing.T) {
	s := newTestStore(memstore.New())

	mustAppend(t, s, Notes, rec(1))
	mustAppend(t, s, Notes, rec(2))

	again := rec(1)
	again.TranslatedText = "hola otra vez"
	list := mustAppend(t, s, Notes, again)

	assert.Equal(t, []string{"r01", "r02"}, ids(list))
	assert.Equal(t, "hola otra vez", list[0].TranslatedText)
}

func TestStore_AppendAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(memstore.New())

	r := rec(1)
	r.ID = ""
	r.Timestamp = time.Time{}

	list := mustAppend(t, s, Recent, r)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].Timestamp.IsZero())
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	backend := newPlainStore()
	s := newTestStore(backend)

	r := rec(1)
	r.TranslatedText = ""

	_, err := s.Append(context.Background(), Recent, r, 10)
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Zero(t, backend.writes())
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := newPlainStore()
	s := newTestStore(backend)

	mustAppend(t, s, Recent, rec(1))
	mustAppend(t, s, Recent, rec(2))
	writes := backend.writes()

	first, err := s.Remove(ctx, Recent, "r01")
	require.NoError(t, err)
	second, err := s.Remove(ctx, Recent, "r01")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, writes+1, backend.writes(), "second remove must not write")

	// removing from a partition that was never written
	list, err := s.Remove(ctx, Notes, "nope")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, writes+1, backend.writes())
}

func TestStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(newBackend())

			const n = 40

			var wg sync.WaitGroup
			for i := 1; i <= n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := s.Append(context.Background(), Notes, rec(i), 50)
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			list := s.List(context.Background(), Notes)
			require.Len(t, list, n)

			got := make(map[string]bool, n)
			for _, r := range list {
				got[r.ID] = true
			}
			for i := 1; i <= n; i++ {
				assert.True(t, got[rec(i).ID], "missing %s", rec(i).ID)
			}
		})
	}
}

// Two Store instances over one file model two processes. Only the file lock
// taken by kv.Updater keeps their appends from clobbering each other.
func TestStore_ConcurrentAppendsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	a := newTestStore(jsonfile.NewKVStore(path))
	b := newTestStore(jsonfile.NewKVStore(path))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := a
			if i%2 == 0 {
				s = b
			}
			_, err := s.Append(context.Background(), Notes, rec(i), 50)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, a.List(context.Background(), Notes), 20)
}

func TestStore_PartitionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(memstore.New())

	mustAppend(t, s, Recent, rec(1))
	mustAppend(t, s, Notes, rec(2))

	assert.Equal(t, []string{"r01"}, ids(s.List(ctx, Recent)))
	assert.Equal(t, []string{"r02"}, ids(s.List(ctx, Notes)))

	require.NoError(t, s.Clear(ctx, Recent))
	assert.Empty(t, s.List(ctx, Recent))
	assert.Len(t, s.List(ctx, Notes), 1)
}

func TestStore_CorruptPartition(t *testing.T) {
	blobs := []string{
		"{not json",
		`{"id":"x"}`,
		`[{"id":1}]`,
		`[{"id":"a","sourceText":"hi"}]`,
	}

	for i, blob := range blobs {
		t.Run(fmt.Sprintf("blob-%d", i), func(t *testing.T) {
			ctx := context.Background()
			backend := memstore.New()
			require.NoError(t, backend.Set(ctx, Recent.Key(), blob))

			s := newTestStore(backend)

			list := s.List(ctx, Recent)
			assert.NotNil(t, list)
			assert.Empty(t, list)

			list = mustAppend(t, s, Recent, rec(1))
			assert.Equal(t, []string{"r01"}, ids(list))
		})
	}
}

func TestStore_CorruptStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("not a store file"), 0o644))

	s := newTestStore(jsonfile.NewKVStore(path))
	assert.Empty(t, s.List(ctx, Recent))

	list := mustAppend(t, s, Recent, rec(1))
	assert.Equal(t, []string{"r01"}, ids(list))
	assert.Equal(t, []string{"r01"}, ids(s.List(ctx, Recent)))

	list, err := s.Remove(ctx, Recent, "r01")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_WriteFailure(t *testing.T) {
	ctx := context.Background()
	backend := newPlainStore()
	s := newTestStore(backend)

	mustAppend(t, s, Recent, rec(1))
	backend.setFail(true)

	_, err := s.Append(ctx, Recent, rec(2), 10)
	require.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = s.Remove(ctx, Recent, "r01")
	require.ErrorIs(t, err, ErrStorageWrite)

	require.ErrorIs(t, s.Clear(ctx, Recent), ErrStorageWrite)

	// storage still holds the last successful write
	assert.Equal(t, []string{"r01"}, ids(s.List(ctx, Recent)))
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(memstore.New())

	mustAppend(t, s, Notes, rec(1))

	got, err := s.Get(ctx, Notes, "r01")
	require.NoError(t, err)
	assert.Equal(t, rec(1), got)

	_, err = s.Get(ctx, Notes, "r99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_StoredBlobRoundTrips(t *testing.T) {
	ctx := context.Background()
	backend := memstore.New()
	s := newTestStore(backend)

	want := []translation.Record{rec(2), rec(1)}
	mustAppend(t, s, Notes, rec(1))
	mustAppend(t, s, Notes, rec(2))

	entry, err := backend.Get(ctx, Notes.Key())
	require.NoError(t, err)

	got, err := translation.Decode(entry.Value)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParsePartition(t *testing.T) {
	tests := []struct {
		in      string
		want    Partition
		wantErr bool
	}{
		{in: "recent", want: Recent},
		{in: "recentTranslations", want: Recent},
		{in: "notes", want: Notes},
		{in: "saved", want: Notes},
		{in: "translations", want: Notes},
		{in: "other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePartition(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPartition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
