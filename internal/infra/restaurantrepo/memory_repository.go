package restaurantrepo

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/yanqian/findmy/internal/domain/restaurant"
	"github.com/yanqian/findmy/pkg/util"
)

// MemoryRepository keeps restaurants in process memory for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	items      map[int64]restaurant.Restaurant
	emailIndex map[string]int64
	seq        int64
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:      make(map[int64]restaurant.Restaurant),
		emailIndex: make(map[string]int64),
	}
}

// Create stores a new restaurant.
func (r *MemoryRepository) Create(_ context.Context, in restaurant.Input) (restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[in.Email]; exists {
		return restaurant.Restaurant{}, restaurant.ErrEmailExists
	}
	r.seq++
	now := util.NowUTC()
	item := fromInput(r.seq, in)
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = item
	r.emailIndex[item.Email] = item.ID
	return clone(item), nil
}

// Get returns a restaurant by id.
func (r *MemoryRepository) Get(_ context.Context, id int64) (restaurant.Restaurant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return restaurant.Restaurant{}, false, nil
	}
	return clone(item), true, nil
}

// List returns every restaurant ordered by id.
func (r *MemoryRepository) List(_ context.Context) ([]restaurant.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]restaurant.Restaurant, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, clone(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces every mutable field.
func (r *MemoryRepository) Update(_ context.Context, id int64, in restaurant.Input) (restaurant.Restaurant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[id]
	if !ok {
		return restaurant.Restaurant{}, false, nil
	}
	if owner, taken := r.emailIndex[in.Email]; taken && owner != id {
		return restaurant.Restaurant{}, false, restaurant.ErrEmailExists
	}
	delete(r.emailIndex, existing.Email)
	item := fromInput(id, in)
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = util.NowUTC()
	r.items[id] = item
	r.emailIndex[item.Email] = id
	return clone(item), true, nil
}

// Delete removes a restaurant.
func (r *MemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[id]
	if !ok {
		return false, nil
	}
	delete(r.items, id)
	delete(r.emailIndex, existing.Email)
	return true, nil
}

// Search filters by address and cuisine, best rated first.
func (r *MemoryRepository) Search(ctx context.Context, filter restaurant.Filter) ([]restaurant.Restaurant, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	location := strings.ToLower(strings.TrimSpace(filter.Location))
	cuisine := strings.ToLower(strings.TrimSpace(filter.Cuisine))
	out := make([]restaurant.Restaurant, 0)
	for _, item := range all {
		if location != "" && !strings.Contains(strings.ToLower(item.Address), location) {
			continue
		}
		if cuisine != "" && !cuisineMatches(strings.ToLower(item.CuisineType), cuisine) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cuisineMatches(stored, term string) bool {
	if stored == "" {
		return false
	}
	return strings.Contains(stored, term) || strings.Contains(term, stored)
}

func fromInput(id int64, in restaurant.Input) restaurant.Restaurant {
	return restaurant.Restaurant{
		ID:            id,
		Name:          in.Name,
		Address:       in.Address,
		Phone:         in.Phone,
		Email:         in.Email,
		Website:       in.Website,
		AverageRating: in.AverageRating,
		Capacity:      in.Capacity,
		CuisineType:   in.CuisineType,
		OpeningHours:  maps.Clone(in.OpeningHours),
	}
}

func clone(item restaurant.Restaurant) restaurant.Restaurant {
	item.OpeningHours = maps.Clone(item.OpeningHours)
	if item.Website != nil {
		website := *item.Website
		item.Website = &website
	}
	return item
}

var _ restaurant.Repository = (*MemoryRepository)(nil)
