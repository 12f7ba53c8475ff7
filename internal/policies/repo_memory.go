package policies

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Policy
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Policy)}
}

func (r *MemoryRepo) Create(ctx context.Context, p Policy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.ID] = p
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Policy, error) {
	if err := ctx.Err(); err != nil {
		return Policy{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return Policy{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, p Policy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[p.ID]; !ok {
		return ErrNotFound
	}
	r.data[p.ID] = p
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter) ([]Policy, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Policy
	for _, p := range r.data {
		if !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) &&
				!strings.Contains(strings.ToLower(p.PolicyNumber), needle) {
				continue
			}
		}
		matched = append(matched, p)
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
		return []Policy{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepo) CountForYear(ctx context.Context, year int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, p := range r.data {
		if p.CreatedAt.UTC().Year() == year {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	p.ViewCount++
	r.data[id] = p
	return nil
}

func (r *MemoryRepo) IncrementDownloads(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	p.DownloadCount++
	r.data[id] = p
	return nil
}

func (r *MemoryRepo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range r.data {
		if p.IsActive {
			counts[p.Category]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (r *MemoryRepo) Totals(ctx context.Context) (total, active, views, downloads int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, 0, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.data {
		total++
		if p.IsActive {
			active++
		}
		views += p.ViewCount
		downloads += p.DownloadCount
	}
	return total, active, views, downloads, nil
}

var _ Repo = (*MemoryRepo)(nil)
