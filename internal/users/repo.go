package users

import "context"

// NGOFilter narrows NGO listings.
type NGOFilter struct {
	Approved *bool
	District string
	Page     int
	Limit    int
}

// DistrictCount is one bucket of the district-wise NGO distribution.
type DistrictCount struct {
	District string `json:"district"`
	Count    int    `json:"count"`
}

// Repo defines persistence operations for users.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
	ListNGOs(ctx context.Context, filter NGOFilter) ([]User, int, error)
	CountNGOs(ctx context.Context, approved *bool) (int, error)
	NGODistrictCounts(ctx context.Context) ([]DistrictCount, error)
}
