package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/telemetry"
)

// Notifier sends account lifecycle emails. Implementations must not block on
// delivery failures.
type Notifier interface {
	NGORegistration(email, organization, district string)
	NGOApproved(email, name string)
	NGORejected(email, name, reason string)
}

// AssigneeStats summarizes one NGO's assignment workload.
type AssigneeStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// AssignmentSummary is the slim view of an assignment used on dashboards.
type AssignmentSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Priority string    `json:"priority"`
	Deadline time.Time `json:"deadline"`
}

// AssignmentReader exposes the assignment queries the NGO dashboard needs
// without coupling this package to the assignments feature.
type AssignmentReader interface {
	StatsForAssignee(ctx context.Context, ngoID string) (AssigneeStats, error)
	RecentForAssignee(ctx context.Context, ngoID string, limit int) ([]AssignmentSummary, error)
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Role     auth.Role
	Profile  Profile
}

// NGOStats is the ministry-side summary of registered NGOs.
type NGOStats struct {
	Total     int             `json:"total"`
	Approved  int             `json:"approved"`
	Pending   int             `json:"pending"`
	Districts []DistrictCount `json:"districtDistribution"`
}

// Dashboard is the NGO landing payload.
type Dashboard struct {
	Profile     Profile             `json:"profile"`
	Stats       AssigneeStats       `json:"stats"`
	Recent      []AssignmentSummary `json:"recentAssignments"`
	IsApproved  bool                `json:"isApproved"`
	MemberSince time.Time           `json:"memberSince"`
}

type Service struct {
	repo        Repo
	notifier    Notifier
	assignments AssignmentReader
}

// NewService constructs a Service. notifier and assignments may be nil.
func NewService(repo Repo, notifier Notifier, assignments AssignmentReader) *Service {
	return &Service{repo: repo, notifier: notifier, assignments: assignments}
}

const minPasswordLen = 6

// Register creates an account. Ministry accounts are active immediately and
// receive a token. NGO accounts start unapproved and must wait for ministry
// review, so no token is issued for them.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLen {
		return User{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if input.Role != auth.RoleMinistry && input.Role != auth.RoleNGO {
		return User{}, "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}
	if input.Role == auth.RoleNGO && strings.TrimSpace(input.Profile.Organization) == "" {
		return User{}, "", fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsApproved:   input.Role == auth.RoleMinistry,
		Profile:      input.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	telemetry.Info("users.registered", map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
	})

	if user.Role == auth.RoleNGO {
		if s.notifier != nil {
			s.notifier.NGORegistration(user.Email, user.Profile.Organization, user.Profile.District)
		}
		return user, "", nil
	}

	token, err := auth.SignToken(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password. Unapproved NGOs are rejected
// with ErrPendingApproval.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if err == ErrNotFound {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}
	if user.Role == auth.RoleNGO && !user.IsApproved {
		return User{}, "", ErrPendingApproval
	}
	token, err := auth.SignToken(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Approve marks an NGO account approved and notifies it.
func (s *Service) Approve(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user.Role != auth.RoleNGO {
		return User{}, fmt.Errorf("%w: only NGO accounts require approval", ErrInvalidInput)
	}
	if user.IsApproved {
		return user, nil
	}
	user.IsApproved = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	telemetry.Info("users.ngo_approved", map[string]any{"user_id": user.ID})
	if s.notifier != nil {
		s.notifier.NGOApproved(user.Email, user.Profile.Organization)
	}
	return user, nil
}

// Reject declines an NGO registration, notifies the applicant and removes the
// account so the email can be reused.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != auth.RoleNGO {
		return fmt.Errorf("%w: only NGO accounts can be rejected", ErrInvalidInput)
	}
	if s.notifier != nil {
		s.notifier.NGORejected(user.Email, user.Profile.Organization, reason)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	telemetry.Info("users.ngo_rejected", map[string]any{"user_id": id})
	return nil
}

// GetNGO fetches one NGO account.
func (s *Service) GetNGO(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user.Role != auth.RoleNGO {
		return User{}, ErrNotFound
	}
	return user, nil
}

// UpdateNGOProfile replaces the descriptive profile of an NGO. Only the
// account itself may change it.
func (s *Service) UpdateNGOProfile(ctx context.Context, id, callerID string, profile Profile) (User, error) {
	if id != callerID {
		return User{}, ErrForbidden
	}
	user, err := s.GetNGO(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Profile = profile
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListNGOs returns a page of NGO accounts plus the unpaged total.
func (s *Service) ListNGOs(ctx context.Context, filter NGOFilter) ([]User, int, error) {
	return s.repo.ListNGOs(ctx, filter)
}

// Stats aggregates NGO registration counts for the ministry overview.
func (s *Service) Stats(ctx context.Context) (NGOStats, error) {
	total, err := s.repo.CountNGOs(ctx, nil)
	if err != nil {
		return NGOStats{}, err
	}
	approved := true
	approvedCount, err := s.repo.CountNGOs(ctx, &approved)
	if err != nil {
		return NGOStats{}, err
	}
	districts, err := s.repo.NGODistrictCounts(ctx)
	if err != nil {
		return NGOStats{}, err
	}
	if districts == nil {
		districts = []DistrictCount{}
	}
	return NGOStats{
		Total:     total,
		Approved:  approvedCount,
		Pending:   total - approvedCount,
		Districts: districts,
	}, nil
}

// Dashboard builds the NGO landing payload for the calling account.
func (s *Service) Dashboard(ctx context.Context, ngoID string) (Dashboard, error) {
	user, err := s.GetNGO(ctx, ngoID)
	if err != nil {
		return Dashboard{}, err
	}
	dash := Dashboard{
		Profile:     user.Profile,
		Recent:      []AssignmentSummary{},
		IsApproved:  user.IsApproved,
		MemberSince: user.CreatedAt,
	}
	if s.assignments == nil {
		return dash, nil
	}
	stats, err := s.assignments.StatsForAssignee(ctx, ngoID)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.assignments.RecentForAssignee(ctx, ngoID, 5)
	if err != nil {
		return Dashboard{}, err
	}
	dash.Stats = stats
	if recent != nil {
		dash.Recent = recent
	}
	return dash, nil
}

// EnsureDefaultMinistry creates the bootstrap ministry account when no
// account with the given email exists yet. A blank password skips seeding.
func (s *Service) EnsureDefaultMinistry(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if err != ErrNotFound {
		return err
	}
	_, _, err := s.Register(ctx, RegisterInput{
		Email:    email,
		Password: password,
		Role:     auth.RoleMinistry,
		Profile:  Profile{Name: "Ministry of Tribal Affairs"},
	})
	if err != nil {
		return err
	}
	telemetry.Info("users.seeded_ministry", map[string]any{"email": email})
	return nil
}
