package policies

import "context"

// Filter narrows policy listings. Listings only ever return active policies.
type Filter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Repo defines persistence operations for policy documents.
type Repo interface {
	Create(ctx context.Context, p Policy) error
	GetByID(ctx context.Context, id string) (Policy, error)
	Update(ctx context.Context, p Policy) error
	List(ctx context.Context, filter Filter) ([]Policy, int, error)
	CountForYear(ctx context.Context, year int) (int, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	Totals(ctx context.Context) (total, active, views, downloads int, err error)
}
