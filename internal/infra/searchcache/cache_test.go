package searchcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/findmy/internal/domain/recommendation"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(2)
	require.NoError(t, err)

	cache.Add(ctx, "a", []recommendation.RawPlace{{PlaceID: "1"}})
	cache.Add(ctx, "b", []recommendation.RawPlace{{PlaceID: "2"}})
	_, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	cache.Add(ctx, "c", []recommendation.RawPlace{{PlaceID: "3"}})

	_, ok = cache.Get(ctx, "b")
	require.False(t, ok)
	_, ok = cache.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, 2, cache.Len())
}

func TestLRU_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(0)
	require.NoError(t, err)
	for i := range DefaultCapacity + 5 {
		cache.Add(ctx, fmt.Sprintf("q%d", i), nil)
	}
	require.Equal(t, DefaultCapacity, cache.Len())
}

func TestLRU_EntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(10)
	require.NoError(t, err)

	in := []recommendation.RawPlace{{PlaceID: "1"}}
	cache.Add(ctx, "q", in)
	in[0].PlaceID = "mutated"

	out, ok := cache.Get(ctx, "q")
	require.True(t, ok)
	out[0].PlaceID = "also mutated"

	again, _ := cache.Get(ctx, "q")
	require.Equal(t, "1", again[0].PlaceID)
}

func TestLRU_EmptyEntryIsAHit(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(10)
	require.NoError(t, err)
	cache.Add(ctx, "nothing", []recommendation.RawPlace{})

	places, ok := cache.Get(ctx, "nothing")
	require.True(t, ok)
	require.NotNil(t, places)
	require.Empty(t, places)
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("q%d", i%4)
			cache.Add(ctx, key, []recommendation.RawPlace{{PlaceID: key}})
			if places, ok := cache.Get(ctx, key); ok {
				assert.Equal(t, key, places[0].PlaceID)
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, cache.Len(), 8)
}

type fakeShared struct {
	entries map[string][]recommendation.RawPlace
	getErr  error
	setErr  error
	gets    int
}

func (f *fakeShared) Get(_ context.Context, query string) ([]recommendation.RawPlace, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	places, ok := f.entries[query]
	return places, ok, nil
}

func (f *fakeShared) Set(_ context.Context, query string, places []recommendation.RawPlace) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[query] = places
	return nil
}

func TestTiered_ConsultsSharedTierOnLocalMiss(t *testing.T) {
	ctx := context.Background()
	local, err := NewLRU(10)
	require.NoError(t, err)
	shared := &fakeShared{entries: map[string][]recommendation.RawPlace{
		"sushi Rabat": {{PlaceID: "remote"}},
	}}
	cache := NewTiered(local, shared, slog.New(slog.NewTextHandler(io.Discard, nil)))

	places, ok := cache.Get(ctx, "sushi Rabat")
	require.True(t, ok)
	require.Equal(t, "remote", places[0].PlaceID)
	require.Equal(t, 1, shared.gets)

	_, ok = cache.Get(ctx, "sushi Rabat")
	require.True(t, ok)
	require.Equal(t, 1, shared.gets)

	cache.Add(ctx, "bar Fes", []recommendation.RawPlace{{PlaceID: "x"}})
	require.Contains(t, shared.entries, "bar Fes")
}

func TestTiered_SharedFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	local, err := NewLRU(10)
	require.NoError(t, err)
	shared := &fakeShared{entries: map[string][]recommendation.RawPlace{}, getErr: errors.New("down"), setErr: errors.New("down")}
	cache := NewTiered(local, shared, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, ok := cache.Get(ctx, "q")
	require.False(t, ok)

	cache.Add(ctx, "q", []recommendation.RawPlace{{PlaceID: "1"}})
	places, ok := cache.Get(ctx, "q")
	require.True(t, ok)
	require.Equal(t, "1", places[0].PlaceID)
}
