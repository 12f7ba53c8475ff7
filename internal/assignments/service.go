package assignments

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/storage/object"
	"patta-backend/internal/shared/telemetry"
)

// NGOInfo is the slice of an NGO account this package needs.
type NGOInfo struct {
	ID           string
	Email        string
	Organization string
	Approved     bool
}

// NGODirectory resolves NGO accounts without coupling this package to the
// users feature.
type NGODirectory interface {
	NGOByID(ctx context.Context, id string) (NGOInfo, error)
}

// Notifier sends assignment lifecycle emails. Implementations must not block
// on delivery failures.
type Notifier interface {
	AssignmentCreated(ngoEmail, title, district string, deadline time.Time)
	AssignmentCompleted(title, ngoEmail string)
	ReportSubmitted(title, ngoEmail string)
}

// CreateInput carries a new assignment request.
type CreateInput struct {
	AssignedTo   string
	Title        string
	Description  string
	Area         Area
	Instructions string
	Objectives   []string
	Deliverables []string
	Deadline     time.Time
	Priority     Priority
}

// StatusInput carries a caller-requested status update.
type StatusInput struct {
	Status          Status
	Progress        *int
	CompletionNotes string
}

// ReportInput carries the structured part of a verification report.
// Attachments are handled separately as streams.
type ReportInput struct {
	Summary         string
	Findings        []string
	Recommendations []string
	Challenges      []string
	VillagesVisited []string
}

// AttachmentInput is one report attachment to be stored.
type AttachmentInput struct {
	FileName string
	Body     io.Reader
}

type Service struct {
	repo     Repo
	store    object.ObjectStore
	ngos     NGODirectory
	notifier Notifier
	now      func() time.Time
}

// NewService constructs a Service. ngos and notifier may be nil.
func NewService(repo Repo, store object.ObjectStore, ngos NGODirectory, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		ngos:     ngos,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create registers new field verification work for an approved NGO.
func (s *Service) Create(ctx context.Context, assignedBy string, input CreateInput) (Assignment, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Assignment{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Instructions) == "" {
		return Assignment{}, fmt.Errorf("%w: instructions are required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Area.District) == "" {
		return Assignment{}, fmt.Errorf("%w: area district is required", ErrInvalidInput)
	}
	if input.Deadline.IsZero() {
		return Assignment{}, fmt.Errorf("%w: deadline is required", ErrInvalidInput)
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if _, ok := ParsePriority(string(input.Priority)); !ok {
		return Assignment{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}

	var ngoEmail string
	if s.ngos != nil {
		ngo, err := s.ngos.NGOByID(ctx, input.AssignedTo)
		if err != nil {
			return Assignment{}, err
		}
		if !ngo.Approved {
			return Assignment{}, ErrNGONotApproved
		}
		ngoEmail = ngo.Email
	}

	now := s.now()
	a := Assignment{
		ID:           uuid.NewString(),
		AssignedTo:   input.AssignedTo,
		AssignedBy:   assignedBy,
		Title:        input.Title,
		Description:  input.Description,
		Area:         input.Area,
		Instructions: input.Instructions,
		Objectives:   input.Objectives,
		Deliverables: input.Deliverables,
		Deadline:     input.Deadline,
		Priority:     input.Priority,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Assignment{}, err
	}

	telemetry.Info("assignments.created", map[string]any{
		"assignment_id": a.ID,
		"assigned_to":   a.AssignedTo,
		"priority":      string(a.Priority),
	})
	if s.notifier != nil && ngoEmail != "" {
		s.notifier.AssignmentCreated(ngoEmail, a.Title, a.Area.District, a.Deadline)
	}
	return a, nil
}

// Get fetches one assignment with the overdue correction applied. When the
// correction changes the stored status the fix is written back.
func (s *Service) Get(ctx context.Context, id string) (Assignment, error) {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	derived := WithDerivedStatus(stored, s.now())
	if derived.Status != stored.Status {
		derived.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, derived); err != nil {
			return Assignment{}, err
		}
		telemetry.Info("assignments.overdue", map[string]any{"assignment_id": id})
	}
	return derived, nil
}

// List returns a filtered page with the overdue correction applied to the
// view. List reads do not write corrections back.
func (s *Service) List(ctx context.Context, filter Filter) ([]Assignment, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range items {
		items[i] = WithDerivedStatus(items[i], now)
	}
	return items, total, nil
}

// UpdateStatus applies a caller-requested transition. Only a ministry actor
// or the assigned NGO may update status.
func (s *Service) UpdateStatus(ctx context.Context, id, callerID string, role auth.Role, input StatusInput) (Assignment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if role != auth.RoleMinistry && a.AssignedTo != callerID {
		return Assignment{}, ErrForbidden
	}
	if input.Status == StatusCancelled && role != auth.RoleMinistry {
		return Assignment{}, ErrForbidden
	}

	now := s.now()
	a = WithDerivedStatus(a, now)
	if err := ValidateTransition(a.Status, input.Status); err != nil {
		return Assignment{}, err
	}

	a.Status = input.Status
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return Assignment{}, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
		}
		a.Progress = *input.Progress
	}
	if input.CompletionNotes != "" {
		a.CompletionNotes = input.CompletionNotes
	}
	if a.Status == StatusCompleted && a.CompletedAt == nil {
		a.CompletedAt = &now
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Assignment{}, err
	}
	telemetry.Info("assignments.status_updated", map[string]any{
		"assignment_id": id,
		"status":        string(a.Status),
	})
	if a.Status == StatusCompleted && s.notifier != nil {
		s.notifier.AssignmentCompleted(a.Title, s.ngoEmail(ctx, a.AssignedTo))
	}
	return a, nil
}

// SubmitReport stores a verification report. Only the assigned NGO may
// submit, and submission unconditionally forces completed and stamps
// completedAt regardless of the prior status.
func (s *Service) SubmitReport(ctx context.Context, id, callerID string, input ReportInput, attachments []AttachmentInput) (Assignment, error) {
	if strings.TrimSpace(input.Summary) == "" {
		return Assignment{}, fmt.Errorf("%w: report summary is required", ErrInvalidInput)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.AssignedTo != callerID {
		return Assignment{}, ErrForbidden
	}

	stored := make([]Attachment, 0, len(attachments))
	for _, att := range attachments {
		key, size, _, err := s.store.Save(ctx, "reports", att.FileName, att.Body)
		if err != nil {
			return Assignment{}, fmt.Errorf("store attachment: %w", err)
		}
		stored = append(stored, Attachment{
			FileName:  att.FileName,
			FilePath:  key,
			SizeBytes: size,
		})
	}

	now := s.now()
	a.Report = &Report{
		Summary:         input.Summary,
		Findings:        input.Findings,
		Recommendations: input.Recommendations,
		Challenges:      input.Challenges,
		VillagesVisited: input.VillagesVisited,
		Attachments:     stored,
		SubmittedAt:     now,
	}
	a.Status = StatusCompleted
	a.CompletedAt = &now
	a.Progress = 100
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Assignment{}, err
	}
	telemetry.Info("assignments.report_submitted", map[string]any{
		"assignment_id": id,
		"attachments":   len(stored),
	})
	if s.notifier != nil {
		s.notifier.ReportSubmitted(a.Title, s.ngoEmail(ctx, a.AssignedTo))
	}
	return a, nil
}

// GiveFeedback records the ministry's review of a completed assignment.
func (s *Service) GiveFeedback(ctx context.Context, id, givenBy string, rating int, comments string) (Assignment, error) {
	if rating < 1 || rating > 5 {
		return Assignment{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.Status != StatusCompleted {
		return Assignment{}, fmt.Errorf("%w: feedback requires a completed assignment", ErrInvalidInput)
	}
	a.Feedback = &Feedback{
		Rating:   rating,
		Comments: comments,
		GivenBy:  givenBy,
		GivenAt:  s.now(),
	}
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// Delete removes an assignment and any stored report attachments. Attachment
// cleanup failures are logged, not fatal.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if a.Report != nil {
		for _, att := range a.Report.Attachments {
			if err := s.store.Delete(ctx, att.FilePath); err != nil {
				telemetry.Warn("assignments.attachment_cleanup_failed", map[string]any{
					"assignment_id": id,
					"path":          att.FilePath,
					"error":         err.Error(),
				})
			}
		}
	}
	telemetry.Info("assignments.deleted", map[string]any{"assignment_id": id})
	return nil
}

// Stats aggregates assignment counts for the ministry overview.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	byPriority, err := s.repo.PriorityCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	monthly, err := s.repo.MonthlyCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	if byPriority == nil {
		byPriority = map[Priority]int{}
	}
	if monthly == nil {
		monthly = []MonthCount{}
	}
	stats := Stats{
		Active:     byStatus[StatusActive],
		InProgress: byStatus[StatusInProgress],
		Completed:  byStatus[StatusCompleted],
		Cancelled:  byStatus[StatusCancelled],
		Overdue:    byStatus[StatusOverdue],
		ByPriority: byPriority,
		Monthly:    monthly,
	}
	for _, count := range byStatus {
		stats.Total += count
	}
	return stats, nil
}

// StatsForAssignee summarizes one NGO's workload.
func (s *Service) StatsForAssignee(ctx context.Context, ngoID string) (AssigneeStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, ngoID)
	if err != nil {
		return AssigneeStats{}, err
	}
	stats := AssigneeStats{
		Active:     byStatus[StatusActive],
		InProgress: byStatus[StatusInProgress],
		Completed:  byStatus[StatusCompleted],
		Overdue:    byStatus[StatusOverdue],
	}
	for _, count := range byStatus {
		stats.Total += count
	}
	return stats, nil
}

// RecentForAssignee returns the NGO's newest assignments with the overdue
// correction applied.
func (s *Service) RecentForAssignee(ctx context.Context, ngoID string, limit int) ([]Assignment, error) {
	items, _, err := s.List(ctx, Filter{AssignedTo: ngoID, Page: 1, Limit: limit})
	return items, err
}

func (s *Service) ngoEmail(ctx context.Context, ngoID string) string {
	if s.ngos == nil {
		return ""
	}
	ngo, err := s.ngos.NGOByID(ctx, ngoID)
	if err != nil {
		return ""
	}
	return ngo.Email
}
