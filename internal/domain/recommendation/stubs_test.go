package recommendation

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/yanqian/findmy/internal/domain/restaurant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubModel struct {
	answer  string
	err     error
	prompts []string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

type stubProvider struct {
	mu          sync.Mutex
	pages       map[string]SearchPage
	searchErr   map[string]error
	details     map[string]DetailPage
	detailErr   map[string]error
	queries     []string
	detailCalls []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		pages:     map[string]SearchPage{},
		searchErr: map[string]error{},
		details:   map[string]DetailPage{},
		detailErr: map[string]error{},
	}
}

func (p *stubProvider) TextSearch(_ context.Context, query string) (SearchPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, query)
	if err := p.searchErr[query]; err != nil {
		return SearchPage{}, err
	}
	page, ok := p.pages[query]
	if !ok {
		return SearchPage{Status: StatusZeroResults}, nil
	}
	return page, nil
}

func (p *stubProvider) Details(_ context.Context, placeID string, _ []string) (DetailPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detailCalls = append(p.detailCalls, placeID)
	if err := p.detailErr[placeID]; err != nil {
		return DetailPage{}, err
	}
	page, ok := p.details[placeID]
	if !ok {
		return DetailPage{Status: "NOT_FOUND"}, nil
	}
	return page, nil
}

func (p *stubProvider) queryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

type mapCache struct {
	entries map[string][]RawPlace
	adds    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]RawPlace{}}
}

func (c *mapCache) Get(_ context.Context, query string) ([]RawPlace, bool) {
	places, ok := c.entries[query]
	return places, ok
}

func (c *mapCache) Add(_ context.Context, query string, places []RawPlace) {
	c.adds++
	c.entries[query] = places
}

type stubFinder struct {
	results []restaurant.Restaurant
	err     error
	filters []restaurant.Filter
}

func (f *stubFinder) Search(_ context.Context, filter restaurant.Filter) ([]restaurant.Restaurant, error) {
	f.filters = append(f.filters, filter)
	return f.results, f.err
}

func okDetail(name string, rating *float64) DetailPage {
	return DetailPage{Status: StatusOK, Result: PlaceRecord{Name: name, Rating: rating}}
}

func ratingOf(v float64) *float64 {
	return &v
}
