package searchcache

import (
	"context"
	"log/slog"

	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/pkg/metrics"
)

// SharedTier is a cache shared between processes.
type SharedTier interface {
	Get(ctx context.Context, query string) ([]recommendation.RawPlace, bool, error)
	Set(ctx context.Context, query string, places []recommendation.RawPlace) error
}

// Tiered consults the in-process LRU first and the shared tier on a miss.
// Shared tier failures are logged and treated as misses.
type Tiered struct {
	local  *LRU
	shared SharedTier
	logger *slog.Logger
}

// NewTiered stacks local over shared.
func NewTiered(local *LRU, shared SharedTier, logger *slog.Logger) *Tiered {
	return &Tiered{
		local:  local,
		shared: shared,
		logger: logger.With("component", "searchcache.tiered"),
	}
}

func (t *Tiered) Get(ctx context.Context, query string) ([]recommendation.RawPlace, bool) {
	if places, ok := t.local.Get(ctx, query); ok {
		return places, true
	}
	places, ok, err := t.shared.Get(ctx, query)
	if err != nil {
		t.logger.Warn("shared search cache read failed", "error", err)
		metrics.SearchCacheLookupsTotal.WithLabelValues("shared", "error").Inc()
		return nil, false
	}
	if !ok {
		metrics.SearchCacheLookupsTotal.WithLabelValues("shared", "miss").Inc()
		return nil, false
	}
	metrics.SearchCacheLookupsTotal.WithLabelValues("shared", "hit").Inc()
	t.local.Add(ctx, query, places)
	return clonePlaces(places), true
}

func (t *Tiered) Add(ctx context.Context, query string, places []recommendation.RawPlace) {
	t.local.Add(ctx, query, places)
	if err := t.shared.Set(ctx, query, places); err != nil {
		t.logger.Warn("shared search cache write failed", "error", err)
	}
}

var _ recommendation.SearchCache = (*Tiered)(nil)
