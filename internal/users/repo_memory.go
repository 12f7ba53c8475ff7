package users

import (
	"context"
	"sort"
	"strings"
	"sync"

	"patta-backend/internal/shared/auth"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) Update(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[user.ID]; !ok {
		return ErrNotFound
	}
	r.data[user.ID] = user
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

func (r *MemoryRepo) ListNGOs(ctx context.Context, filter NGOFilter) ([]User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ngos []User
	for _, user := range r.data {
		if !matchesNGOFilter(user, filter) {
			continue
		}
		ngos = append(ngos, user)
	}
	sort.Slice(ngos, func(i, j int) bool {
		return ngos[i].CreatedAt.After(ngos[j].CreatedAt)
	})

	total := len(ngos)
	return paginate(ngos, filter.Page, filter.Limit), total, nil
}

func (r *MemoryRepo) CountNGOs(ctx context.Context, approved *bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, user := range r.data {
		if user.Role != auth.RoleNGO {
			continue
		}
		if approved != nil && user.IsApproved != *approved {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MemoryRepo) NGODistrictCounts(ctx context.Context) ([]DistrictCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, user := range r.data {
		if user.Role == auth.RoleNGO && user.IsApproved {
			counts[user.Profile.District]++
		}
	}

	out := make([]DistrictCount, 0, len(counts))
	for district, count := range counts {
		out = append(out, DistrictCount{District: district, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func matchesNGOFilter(user User, filter NGOFilter) bool {
	if user.Role != auth.RoleNGO {
		return false
	}
	if filter.Approved != nil && user.IsApproved != *filter.Approved {
		return false
	}
	if filter.District != "" && !strings.Contains(strings.ToLower(user.Profile.District), strings.ToLower(filter.District)) {
		return false
	}
	return true
}

func paginate(users []User, page, limit int) []User {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(users) {
		return []User{}
	}
	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	return users[start:end]
}

var _ Repo = (*MemoryRepo)(nil)
