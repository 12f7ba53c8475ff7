package assignments

import (
	"context"
	"strings"
	"testing"
	"time"

	"patta-backend/internal/shared/auth"
	localstore "patta-backend/internal/shared/storage/object/local"
)

type fakeDirectory struct {
	ngos map[string]NGOInfo
}

func (f fakeDirectory) NGOByID(ctx context.Context, id string) (NGOInfo, error) {
	ngo, ok := f.ngos[id]
	if !ok {
		return NGOInfo{}, ErrNGONotFound
	}
	return ngo, nil
}

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	store := localstore.New(t.TempDir())
	dir := fakeDirectory{ngos: map[string]NGOInfo{
		"ngo-1": {ID: "ngo-1", Email: "ngo@example.org", Organization: "Van Seva", Approved: true},
		"ngo-2": {ID: "ngo-2", Email: "pending@example.org", Organization: "Pending Org", Approved: false},
	}}
	return NewService(repo, store, dir, nil), repo
}

func validCreateInput(deadline time.Time) CreateInput {
	return CreateInput{
		AssignedTo:   "ngo-1",
		Title:        "Verify pattas in Bastar block",
		Area:         Area{District: "Bastar"},
		Instructions: "Visit each village and verify land records",
		Deadline:     deadline,
		Priority:     PriorityHigh,
	}
}

func TestCreateStartsActive(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(context.Background(), "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusActive {
		t.Fatalf("status = %s, want active", a.Status)
	}
	if a.AssignedBy != "ministry-1" {
		t.Fatalf("assignedBy = %s", a.AssignedBy)
	}
	if a.CompletedAt != nil {
		t.Fatal("completedAt set on creation")
	}
}

func TestCreateRejectsUnapprovedNGO(t *testing.T) {
	svc, _ := newTestService(t)

	input := validCreateInput(time.Now().Add(time.Hour))
	input.AssignedTo = "ngo-2"
	if _, err := svc.Create(context.Background(), "ministry-1", input); err != ErrNGONotApproved {
		t.Fatalf("err = %v, want ErrNGONotApproved", err)
	}

	input.AssignedTo = "missing"
	if _, err := svc.Create(context.Background(), "ministry-1", input); err != ErrNGONotFound {
		t.Fatalf("err = %v, want ErrNGONotFound", err)
	}
}

func TestGetPersistsOverdueCorrection(t *testing.T) {
	svc, repo := newTestService(t)

	a, err := svc.Create(context.Background(), "ministry-1", validCreateInput(time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Creation stores active; the deadline is already past.
	stored, _ := repo.GetByID(context.Background(), a.ID)
	if stored.Status != StatusActive {
		t.Fatalf("stored status = %s before read", stored.Status)
	}

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusOverdue {
		t.Fatalf("derived status = %s, want overdue", got.Status)
	}

	stored, _ = repo.GetByID(context.Background(), a.ID)
	if stored.Status != StatusOverdue {
		t.Fatalf("stored status = %s after read, want overdue", stored.Status)
	}
}

func TestUpdateStatusAuthz(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A different NGO cannot touch it.
	_, err = svc.UpdateStatus(ctx, a.ID, "ngo-9", auth.RoleNGO, StatusInput{Status: StatusInProgress})
	if err != ErrForbidden {
		t.Fatalf("stranger update err = %v, want ErrForbidden", err)
	}

	// The assignee can start work.
	updated, err := svc.UpdateStatus(ctx, a.ID, "ngo-1", auth.RoleNGO, StatusInput{Status: StatusInProgress})
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}

	// Only ministry may cancel.
	_, err = svc.UpdateStatus(ctx, a.ID, "ngo-1", auth.RoleNGO, StatusInput{Status: StatusCancelled})
	if err != ErrForbidden {
		t.Fatalf("ngo cancel err = %v, want ErrForbidden", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, "ministry-1", auth.RoleMinistry, StatusInput{Status: StatusCancelled}); err != nil {
		t.Fatalf("ministry cancel: %v", err)
	}
}

func TestUpdateStatusCompletedStampsCompletedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, a.ID, "ngo-1", auth.RoleNGO, StatusInput{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("completedAt not stamped")
	}

	// Terminal: no further transitions.
	_, err = svc.UpdateStatus(ctx, a.ID, "ngo-1", auth.RoleNGO, StatusInput{Status: StatusInProgress})
	if err == nil {
		t.Fatal("transition out of completed accepted")
	}
}

func TestSubmitReportForcesCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, "ngo-1", auth.RoleNGO, StatusInput{Status: StatusInProgress}); err != nil {
		t.Fatalf("start work: %v", err)
	}

	report := ReportInput{
		Summary:         "All twelve pattas verified on site",
		Findings:        []string{"two records missing coordinates"},
		VillagesVisited: []string{"Kondagaon"},
	}
	attachments := []AttachmentInput{
		{FileName: "survey.txt", Body: strings.NewReader("field notes")},
	}

	updated, err := svc.SubmitReport(ctx, a.ID, "ngo-1", report, attachments)
	if err != nil {
		t.Fatalf("submit report: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatal("completedAt not stamped")
	}
	if updated.Report == nil || updated.Report.SubmittedAt.IsZero() {
		t.Fatal("report not recorded")
	}
	if len(updated.Report.Attachments) != 1 || updated.Report.Attachments[0].FileName != "survey.txt" {
		t.Fatalf("attachments = %+v", updated.Report.Attachments)
	}
	if updated.Progress != 100 {
		t.Fatalf("progress = %d, want 100", updated.Progress)
	}
}

func TestSubmitReportOnlyAssignee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.SubmitReport(ctx, a.ID, "ngo-9", ReportInput{Summary: "not mine"}, nil)
	if err != ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestGiveFeedbackRequiresCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GiveFeedback(ctx, a.ID, "ministry-1", 4, "good"); err == nil {
		t.Fatal("feedback on active assignment accepted")
	}

	if _, err := svc.SubmitReport(ctx, a.ID, "ngo-1", ReportInput{Summary: "done"}, nil); err != nil {
		t.Fatalf("submit report: %v", err)
	}

	updated, err := svc.GiveFeedback(ctx, a.ID, "ministry-1", 4, "good work")
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if updated.Feedback == nil || updated.Feedback.Rating != 4 {
		t.Fatalf("feedback = %+v", updated.Feedback)
	}

	if _, err := svc.GiveFeedback(ctx, a.ID, "ministry-1", 6, ""); err == nil {
		t.Fatal("rating 6 accepted")
	}
}

func TestStatsForAssignee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "ministry-1", validCreateInput(time.Now().Add(96*time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SubmitReport(ctx, first.ID, "ngo-1", ReportInput{Summary: "done"}, nil); err != nil {
		t.Fatalf("submit report: %v", err)
	}

	stats, err := svc.StatsForAssignee(ctx, "ngo-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Active != 1 || stats.Completed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
