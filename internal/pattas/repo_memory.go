package pattas

import (
	"context"
	"sort"
	"strings"
	"sync"

	"patta-backend/internal/extract"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Patta
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Patta)}
}

func (r *MemoryRepo) Create(ctx context.Context, patta Patta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[patta.ID] = patta
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Patta, error) {
	if err := ctx.Err(); err != nil {
		return Patta{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	patta, ok := r.data[id]
	if !ok {
		return Patta{}, ErrNotFound
	}
	return patta, nil
}

func (r *MemoryRepo) Update(ctx context.Context, patta Patta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[patta.ID]; !ok {
		return ErrNotFound
	}
	r.data[patta.ID] = patta
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

func (r *MemoryRepo) List(ctx context.Context, filter Filter) ([]Patta, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Patta
	for _, patta := range r.data {
		if !matchesFilter(patta, filter) {
			continue
		}
		matched = append(matched, patta)
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
		return []Patta{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepo) MapData(ctx context.Context) ([]MapPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var points []MapPoint
	for _, patta := range r.data {
		if patta.Coordinates == nil {
			continue
		}
		points = append(points, MapPoint{
			ID:           patta.ID,
			ClaimantName: patta.ClaimantName,
			District:     patta.District,
			Village:      patta.Village,
			Latitude:     patta.Coordinates.Latitude,
			Longitude:    patta.Coordinates.Longitude,
			IsVerified:   patta.IsVerified,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ID < points[j].ID })
	return points, nil
}

func (r *MemoryRepo) Count(ctx context.Context, verified *bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, patta := range r.data {
		if verified != nil && patta.IsVerified != *verified {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MemoryRepo) DistrictCounts(ctx context.Context) ([]DistrictCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, patta := range r.data {
		if extract.IsSentinel(patta.District) {
			continue
		}
		counts[patta.District]++
	}
	out := make([]DistrictCount, 0, len(counts))
	for district, count := range counts {
		out = append(out, DistrictCount{District: district, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (r *MemoryRepo) MonthlyCounts(ctx context.Context) ([]MonthCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, patta := range r.data {
		counts[patta.CreatedAt.UTC().Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for month, count := range counts {
		out = append(out, MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func matchesFilter(patta Patta, filter Filter) bool {
	if filter.District != "" && !strings.Contains(strings.ToLower(patta.District), strings.ToLower(filter.District)) {
		return false
	}
	if filter.State != "" && !strings.Contains(strings.ToLower(patta.State), strings.ToLower(filter.State)) {
		return false
	}
	if filter.Verified != nil && patta.IsVerified != *filter.Verified {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(patta.ClaimantName), needle) &&
			!strings.Contains(strings.ToLower(patta.Village), needle) &&
			!strings.Contains(strings.ToLower(patta.District), needle) {
			return false
		}
	}
	return true
}

var _ Repo = (*MemoryRepo)(nil)
