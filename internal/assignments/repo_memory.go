package assignments

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Assignment
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Assignment)}
}

func (r *MemoryRepo) Create(ctx context.Context, a Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[a.ID]; !ok {
		return ErrNotFound
	}
	r.data[a.ID] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter) ([]Assignment, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Assignment
	for _, a := range r.data {
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(a.Priority) != filter.Priority {
			continue
		}
		if filter.AssignedTo != "" && a.AssignedTo != filter.AssignedTo {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []Assignment{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, assignedTo string) (map[Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Status]int)
	for _, a := range r.data {
		if assignedTo != "" && a.AssignedTo != assignedTo {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}

func (r *MemoryRepo) PriorityCounts(ctx context.Context) (map[Priority]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Priority]int)
	for _, a := range r.data {
		counts[a.Priority]++
	}
	return counts, nil
}

func (r *MemoryRepo) MonthlyCounts(ctx context.Context) ([]MonthCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range r.data {
		counts[a.CreatedAt.UTC().Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for month, count := range counts {
		out = append(out, MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
