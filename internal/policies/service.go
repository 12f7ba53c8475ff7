package policies

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"patta-backend/internal/shared/storage/object"
	"patta-backend/internal/shared/telemetry"
)

type Service struct {
	repo  Repo
	store object.ObjectStore
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// UploadInput carries a new policy document.
type UploadInput struct {
	Name        string
	Description string
	Category    string
	FileName    string
	Body        io.Reader
}

// UpdateInput carries a partial policy edit. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
}

// Upload stores a policy document and assigns it a sequential policy number
// of the form POL-YYYY-NNNN.
func (s *Service) Upload(ctx context.Context, uploadedBy string, input UploadInput) (Policy, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Policy{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}
	if !ValidCategory(category) {
		return Policy{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	key, size, mimeType, err := s.store.Save(ctx, "policies", input.FileName, input.Body)
	if err != nil {
		return Policy{}, fmt.Errorf("store document: %w", err)
	}

	number, err := s.nextPolicyNumber(ctx)
	if err != nil {
		return Policy{}, err
	}

	now := s.now()
	p := Policy{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Description:  input.Description,
		Category:     category,
		PolicyNumber: number,
		FilePath:     key,
		FileName:     input.FileName,
		FileSize:     size,
		MimeType:     mimeType,
		UploadedBy:   uploadedBy,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Policy{}, err
	}
	telemetry.Info("policies.uploaded", map[string]any{
		"policy_id":     p.ID,
		"policy_number": p.PolicyNumber,
		"category":      p.Category,
	})
	return p, nil
}

// Get fetches one policy record.
func (s *Service) Get(ctx context.Context, id string) (Policy, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of active policies plus the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter) ([]Policy, int, error) {
	return s.repo.List(ctx, filter)
}

// OpenForView streams the document and bumps the view counter.
func (s *Service) OpenForView(ctx context.Context, id string) (Policy, io.ReadCloser, error) {
	return s.open(ctx, id, s.repo.IncrementViews)
}

// OpenForDownload streams the document and bumps the download counter.
func (s *Service) OpenForDownload(ctx context.Context, id string) (Policy, io.ReadCloser, error) {
	return s.open(ctx, id, s.repo.IncrementDownloads)
}

func (s *Service) open(ctx context.Context, id string, bump func(context.Context, string) error) (Policy, io.ReadCloser, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Policy{}, nil, err
	}
	if !p.IsActive {
		return Policy{}, nil, ErrNotFound
	}
	body, err := s.store.Open(ctx, p.FilePath)
	if err != nil {
		return Policy{}, nil, fmt.Errorf("open document: %w", err)
	}
	if err := bump(ctx, id); err != nil {
		telemetry.Warn("policies.counter_bump_failed", map[string]any{
			"policy_id": id,
			"error":     err.Error(),
		})
	}
	return p, body, nil
}

// Update applies a partial edit to the policy metadata.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Policy, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Policy{}, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return Policy{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Category != nil {
		if !ValidCategory(*input.Category) {
			return Policy{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *input.Category)
		}
		p.Category = *input.Category
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Deactivate soft-deletes a policy: it drops out of listings but the file
// and counters are kept.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	p.IsActive = false
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	telemetry.Info("policies.deactivated", map[string]any{"policy_id": id})
	return nil
}

// Stats aggregates the library counters for the ministry overview.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, active, views, downloads, err := s.repo.Totals(ctx)
	if err != nil {
		return Stats{}, err
	}
	categories, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	if categories == nil {
		categories = []CategoryCount{}
	}
	return Stats{
		Total:          total,
		Active:         active,
		TotalViews:     views,
		TotalDownloads: downloads,
		ByCategory:     categories,
	}, nil
}

func (s *Service) nextPolicyNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	count, err := s.repo.CountForYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("POL-%d-%04d", year, count+1), nil
}
