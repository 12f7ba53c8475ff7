package pattas

import "context"

// Filter narrows patta listings.
type Filter struct {
	District string
	State    string
	Verified *bool
	Search   string
	Page     int
	Limit    int
}

// Repo defines persistence operations for patta records.
type Repo interface {
	Create(ctx context.Context, patta Patta) error
	GetByID(ctx context.Context, id string) (Patta, error)
	Update(ctx context.Context, patta Patta) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]Patta, int, error)
	MapData(ctx context.Context) ([]MapPoint, error)
	Count(ctx context.Context, verified *bool) (int, error)
	DistrictCounts(ctx context.Context) ([]DistrictCount, error)
	MonthlyCounts(ctx context.Context) ([]MonthCount, error)
}
