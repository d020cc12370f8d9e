package recommendation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQueries(t *testing.T) {
	require.Equal(t, []string{
		"sushi Rabat",
		"sushi near Rabat",
		"sushi",
		"Rabat",
	}, BuildQueries("Rabat", "sushi"))
}

func TestSearchClient_CachesSuccessfulResponses(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "a"}}}
	cache := newMapCache()
	client := NewSearchClient(provider, cache, discardLogger())

	first, err := client.Search(context.Background(), "sushi Rabat")
	require.NoError(t, err)
	second, err := client.Search(context.Background(), "sushi Rabat")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, provider.queryCount())

	empty, err := client.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Empty(t, empty)
	_, cached := cache.Get(context.Background(), "nowhere")
	require.True(t, cached)
}

func TestSearchClient_NonOKStatusIsEmptyAndUncached(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: "OVER_QUERY_LIMIT", ErrorMessage: "quota"}
	cache := newMapCache()
	client := NewSearchClient(provider, cache, discardLogger())

	places, err := client.Search(context.Background(), "sushi Rabat")
	require.NoError(t, err)
	require.NotNil(t, places)
	require.Empty(t, places)
	require.Zero(t, cache.adds)
}

func TestSearchClient_TransportErrorPropagates(t *testing.T) {
	provider := newStubProvider()
	provider.searchErr["sushi Rabat"] = fmt.Errorf("dial: %w", ErrUpstreamUnavailable)
	cache := newMapCache()
	client := NewSearchClient(provider, cache, discardLogger())

	_, err := client.Search(context.Background(), "sushi Rabat")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.Zero(t, cache.adds)
}

func TestSearchClient_FindPlacesStopsAtFirstHit(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: StatusZeroResults}
	provider.pages["sushi near Rabat"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "near-1"}}}
	provider.pages["sushi"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "generic"}}}
	client := NewSearchClient(provider, nil, discardLogger())

	places, err := client.FindPlaces(context.Background(), "Rabat", "sushi")
	require.NoError(t, err)
	require.Equal(t, []RawPlace{{PlaceID: "near-1"}}, places)
	require.Equal(t, []string{"sushi Rabat", "sushi near Rabat"}, provider.queries)
}

func TestSearchClient_FindPlacesAllEmpty(t *testing.T) {
	provider := newStubProvider()
	client := NewSearchClient(provider, nil, discardLogger())

	places, err := client.FindPlaces(context.Background(), "Rabat", "sushi")
	require.NoError(t, err)
	require.Empty(t, places)
	require.Len(t, provider.queries, 4)
}

func TestSearchClient_FindPlacesAbortsOnError(t *testing.T) {
	provider := newStubProvider()
	provider.searchErr["sushi near Rabat"] = errors.Join(ErrUpstreamUnavailable, errors.New("timeout"))
	client := NewSearchClient(provider, nil, discardLogger())

	_, err := client.FindPlaces(context.Background(), "Rabat", "sushi")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.Equal(t, []string{"sushi Rabat", "sushi near Rabat"}, provider.queries)
}

func TestSearchClient_LogsZeroResults(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: StatusZeroResults}
	var buf bytes.Buffer
	client := NewSearchClient(provider, nil, slog.New(slog.NewTextHandler(&buf, nil)))

	places, err := client.Search(context.Background(), "sushi Rabat")
	require.NoError(t, err)
	require.Empty(t, places)
	require.Contains(t, buf.String(), "text search returned no results")
	require.Contains(t, buf.String(), `query="sushi Rabat"`)
}

func TestSearchClient_FindPlacesFallsBackToActivityOnly(t *testing.T) {
	provider := newStubProvider()
	provider.pages["sushi Rabat"] = SearchPage{Status: StatusZeroResults}
	provider.pages["sushi near Rabat"] = SearchPage{Status: StatusZeroResults}
	provider.pages["sushi"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "generic"}}}
	provider.pages["Rabat"] = SearchPage{Status: StatusOK, Results: []RawPlace{{PlaceID: "city"}}}
	client := NewSearchClient(provider, nil, discardLogger())

	places, err := client.FindPlaces(context.Background(), "Rabat", "sushi")
	require.NoError(t, err)
	require.Equal(t, []RawPlace{{PlaceID: "generic"}}, places)
	require.Equal(t, []string{"sushi Rabat", "sushi near Rabat", "sushi"}, provider.queries)
}
