package assignments

import "context"

// Filter narrows assignment listings.
type Filter struct {
	Status     string
	Priority   string
	AssignedTo string
	Page       int
	Limit      int
}

// Repo defines persistence operations for assignments. Status counts operate
// on stored status; the overdue correction is derived at the service layer.
type Repo interface {
	Create(ctx context.Context, a Assignment) error
	GetByID(ctx context.Context, id string) (Assignment, error)
	Update(ctx context.Context, a Assignment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]Assignment, int, error)
	CountByStatus(ctx context.Context, assignedTo string) (map[Status]int, error)
	PriorityCounts(ctx context.Context) (map[Priority]int, error)
	MonthlyCounts(ctx context.Context) ([]MonthCount, error)
}
