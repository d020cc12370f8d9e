package restaurant

import "context"

// Repository abstracts restaurant persistence.
type Repository interface {
	Create(ctx context.Context, in Input) (Restaurant, error)
	Get(ctx context.Context, id int64) (Restaurant, bool, error)
	List(ctx context.Context) ([]Restaurant, error)
	Update(ctx context.Context, id int64, in Input) (Restaurant, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// Search matches Location against the address and Cuisine against the cuisine type,
	// both case-insensitive substring matches. Cuisine also matches when the stored
	// cuisine type is contained in the search term ("restaurant italien" finds "italien").
	Search(ctx context.Context, filter Filter) ([]Restaurant, error)
}
