package pattas

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"patta-backend/internal/extract"
	"patta-backend/internal/shared/storage/object"
	"patta-backend/internal/shared/telemetry"
)

type Service struct {
	repo  Repo
	store object.ObjectStore
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{repo: repo, store: store}
}

// ManualInput carries a hand-entered record. It is routed through the same
// validation pass as extracted documents so confidence stays comparable.
type ManualInput struct {
	ClaimantName string
	District     string
	Village      string
	State        string
	LandArea     *float64
	ApprovalDate *time.Time
	Coordinates  *extract.Coordinates
}

// UpdateInput carries a partial record update. Nil fields are left untouched.
type UpdateInput struct {
	ClaimantName *string
	District     *string
	Village      *string
	State        *string
	LandArea     *float64
	ApprovalDate *time.Time
	Coordinates  *extract.Coordinates
	IsVerified   *bool
}

// Upload stores a document, runs the extractor over it and persists the
// resulting record. Extraction failure is not an error: the record is created
// with sentinel fields and zero confidence for manual follow-up.
func (s *Service) Upload(ctx context.Context, uploadedBy, fileName string, body io.Reader) (Patta, error) {
	storageKey, size, mimeType, err := s.store.Save(ctx, "pattas", fileName, body)
	if err != nil {
		return Patta{}, fmt.Errorf("store document: %w", err)
	}

	data := extract.ExtractPattaData(ctx, s.store, storageKey, mimeType, fileName)

	patta := fromExtracted(data)
	patta.ID = uuid.NewString()
	patta.FilePath = storageKey
	patta.FileName = fileName
	patta.UploadedBy = uploadedBy
	now := time.Now().UTC()
	patta.CreatedAt = now
	patta.UpdatedAt = now

	if err := s.repo.Create(ctx, patta); err != nil {
		return Patta{}, err
	}

	telemetry.Info("pattas.uploaded", map[string]any{
		"patta_id":   patta.ID,
		"file_name":  fileName,
		"size_bytes": size,
		"confidence": data.Metadata.Confidence,
	})
	return patta, nil
}

// ManualAdd creates a record from hand-entered fields, applying the shared
// acceptance thresholds.
func (s *Service) ManualAdd(ctx context.Context, uploadedBy string, input ManualInput) (Patta, error) {
	if strings.TrimSpace(input.ClaimantName) == "" {
		return Patta{}, fmt.Errorf("%w: claimant name is required", ErrInvalidInput)
	}

	data := extract.Validate(extract.RawFields{
		ClaimantName: input.ClaimantName,
		District:     input.District,
		Village:      input.Village,
		State:        input.State,
		LandArea:     input.LandArea,
		ApprovalDate: input.ApprovalDate,
		Coordinates:  input.Coordinates,
	})
	data.ExtractionNote = "Manually entered record"

	patta := fromExtracted(data)
	patta.ID = uuid.NewString()
	patta.UploadedBy = uploadedBy
	now := time.Now().UTC()
	patta.CreatedAt = now
	patta.UpdatedAt = now

	if err := s.repo.Create(ctx, patta); err != nil {
		return Patta{}, err
	}
	telemetry.Info("pattas.manual_added", map[string]any{"patta_id": patta.ID})
	return patta, nil
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, id string) (Patta, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of records plus the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter) ([]Patta, int, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial edit. Changed fields pass through the shared
// validation so sentinels and confidence stay consistent.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Patta, error) {
	patta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patta{}, err
	}

	raw := extract.RawFields{
		ClaimantName: patta.ClaimantName,
		District:     patta.District,
		Village:      patta.Village,
		State:        patta.State,
		LandArea:     patta.LandArea,
		ApprovalDate: patta.ApprovalDate,
		Coordinates:  patta.Coordinates,
	}
	if input.ClaimantName != nil {
		raw.ClaimantName = *input.ClaimantName
	}
	if input.District != nil {
		raw.District = *input.District
	}
	if input.Village != nil {
		raw.Village = *input.Village
	}
	if input.State != nil {
		raw.State = *input.State
	}
	if input.LandArea != nil {
		raw.LandArea = input.LandArea
	}
	if input.ApprovalDate != nil {
		raw.ApprovalDate = input.ApprovalDate
	}
	if input.Coordinates != nil {
		raw.Coordinates = input.Coordinates
	}

	data := extract.Validate(raw)
	data.Error = patta.ExtractedData.Error
	data.ExtractionNote = patta.ExtractedData.ExtractionNote

	updated := fromExtracted(data)
	updated.ID = patta.ID
	updated.FilePath = patta.FilePath
	updated.FileName = patta.FileName
	updated.UploadedBy = patta.UploadedBy
	updated.IsVerified = patta.IsVerified
	updated.CreatedAt = patta.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	if input.IsVerified != nil {
		updated.IsVerified = *input.IsVerified
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Patta{}, err
	}
	return updated, nil
}

// Verify marks a record as field-verified.
func (s *Service) Verify(ctx context.Context, id string) (Patta, error) {
	patta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patta{}, err
	}
	if patta.IsVerified {
		return patta, nil
	}
	patta.IsVerified = true
	patta.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, patta); err != nil {
		return Patta{}, err
	}
	telemetry.Info("pattas.verified", map[string]any{"patta_id": id})
	return patta, nil
}

// Delete removes a record and its stored document. Failure to remove the
// document is logged but does not fail the delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	patta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if patta.FilePath != "" {
		if err := s.store.Delete(ctx, patta.FilePath); err != nil {
			telemetry.Warn("pattas.file_cleanup_failed", map[string]any{
				"patta_id": id,
				"path":     patta.FilePath,
				"error":    err.Error(),
			})
		}
	}
	telemetry.Info("pattas.deleted", map[string]any{"patta_id": id})
	return nil
}

// MapData returns the coordinates-only projection for the mapping UI.
func (s *Service) MapData(ctx context.Context) ([]MapPoint, error) {
	points, err := s.repo.MapData(ctx)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []MapPoint{}
	}
	return points, nil
}

// Stats aggregates record counts for the ministry overview.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.repo.Count(ctx, nil)
	if err != nil {
		return Stats{}, err
	}
	verified := true
	verifiedCount, err := s.repo.Count(ctx, &verified)
	if err != nil {
		return Stats{}, err
	}
	districts, err := s.repo.DistrictCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	monthly, err := s.repo.MonthlyCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	if districts == nil {
		districts = []DistrictCount{}
	}
	if monthly == nil {
		monthly = []MonthCount{}
	}
	return Stats{
		Total:      total,
		Verified:   verifiedCount,
		Pending:    total - verifiedCount,
		ByDistrict: districts,
		Monthly:    monthly,
	}, nil
}

func fromExtracted(data extract.PattaData) Patta {
	return Patta{
		ClaimantName:  data.ClaimantName,
		District:      data.District,
		Village:       data.Village,
		State:         data.State,
		LandArea:      data.LandArea,
		ApprovalDate:  data.ApprovalDate,
		Coordinates:   data.Coordinates,
		ExtractedData: data,
	}
}
