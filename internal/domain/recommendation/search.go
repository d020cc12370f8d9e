package recommendation

import (
	"context"
	"log/slog"
)

// PlacesProvider is the external places API.
type PlacesProvider interface {
	TextSearch(ctx context.Context, query string) (SearchPage, error)
	Details(ctx context.Context, placeID string, fields []string) (DetailPage, error)
}

// SearchCache stores text search results by exact query. Implementations
// must hand out copies so cached entries never change once added.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]RawPlace, bool)
	Add(ctx context.Context, query string, places []RawPlace)
}

// SearchClient runs cached text searches with query fallback.
type SearchClient struct {
	provider PlacesProvider
	cache    SearchCache
	logger   *slog.Logger
}

// NewSearchClient wires the provider behind the cache. A nil cache disables caching.
func NewSearchClient(provider PlacesProvider, cache SearchCache, logger *slog.Logger) *SearchClient {
	if cache == nil {
		cache = noopCache{}
	}
	return &SearchClient{
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "recommendation.search"),
	}
}

// Search returns the hits for query. Only transport failures are returned as
// errors; a non-OK provider status yields an empty slice.
func (c *SearchClient) Search(ctx context.Context, query string) ([]RawPlace, error) {
	if places, ok := c.cache.Get(ctx, query); ok {
		return places, nil
	}
	page, err := c.provider.TextSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	var places []RawPlace
	switch page.Status {
	case StatusOK:
		places = page.Results
	case StatusZeroResults:
		c.logger.Info("text search returned no results", "query", query)
	default:
		c.logger.Warn("text search returned non-OK status", "query", query, "status", page.Status, "message", page.ErrorMessage)
		return []RawPlace{}, nil
	}
	if places == nil {
		places = []RawPlace{}
	}
	c.cache.Add(ctx, query, places)
	return places, nil
}

// FindPlaces walks the query tiers and returns the first non-empty result set.
func (c *SearchClient) FindPlaces(ctx context.Context, location, activity string) ([]RawPlace, error) {
	for _, query := range BuildQueries(location, activity) {
		places, err := c.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(places) > 0 {
			c.logger.Debug("search tier matched", "query", query, "hits", len(places))
			return places, nil
		}
	}
	return []RawPlace{}, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]RawPlace, bool) { return nil, false }

func (noopCache) Add(context.Context, string, []RawPlace) {}
