package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateMarshalsJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	a := Assignment{
		ID:           "assignment-1",
		AssignedTo:   "ngo-1",
		AssignedBy:   "ministry-1",
		Title:        "Verify pattas in Bastar block",
		Area:         Area{District: "Bastar", Villages: []string{"Kondagaon"}},
		Instructions: "Visit each village",
		Objectives:   []string{"verify land records"},
		Deadline:     time.Now().UTC().Add(72 * time.Hour),
		Priority:     PriorityHigh,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(
			a.ID,
			a.AssignedTo,
			a.AssignedBy,
			a.Title,
			"",
			sqlmock.AnyArg(), // area json
			a.Instructions,
			sqlmock.AnyArg(), // objectives json
			sqlmock.AnyArg(), // deliverables json
			a.Deadline,
			"high",
			"active",
			0,
			nil, // report
			"",
			nil, // completed_at
			nil, // feedback
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCountByStatusScopedToAssignee(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("active", 3).
		AddRow("completed", 2)
	mock.ExpectQuery("SELECT status, count").
		WithArgs("ngo-1").
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background(), "ngo-1")
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[StatusActive] != 3 || counts[StatusCompleted] != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDRestoresReport(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	deadline := now.Add(72 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "assigned_to", "assigned_by", "title", "description", "area", "instructions",
		"objectives", "deliverables", "deadline", "priority", "status", "progress", "report",
		"completion_notes", "completed_at", "feedback", "created_at", "updated_at",
	}).AddRow(
		"assignment-1", "ngo-1", "ministry-1", "Verify pattas", nil,
		[]byte(`{"district":"Bastar"}`), "Visit villages",
		[]byte(`[]`), []byte(`[]`), deadline, "high", "completed", 100,
		[]byte(`{"summary":"all verified","villagesVisited":["Kondagaon"]}`),
		nil, now, nil, now, now,
	)
	mock.ExpectQuery("SELECT id, assigned_to").
		WithArgs("assignment-1").
		WillReturnRows(rows)

	a, err := repo.GetByID(context.Background(), "assignment-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Status != StatusCompleted || a.Area.District != "Bastar" {
		t.Fatalf("assignment = %+v", a)
	}
	if a.Report == nil || a.Report.Summary != "all verified" {
		t.Fatalf("report = %+v", a.Report)
	}
	if a.CompletedAt == nil {
		t.Fatal("completedAt not restored")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
