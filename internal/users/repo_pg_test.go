package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"patta-backend/internal/shared/auth"
)

func TestPGRepoCreateLowercasesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	user := User{
		ID:           "user-1",
		Email:        "VanSeva@Example.org",
		PasswordHash: "hash",
		Role:         auth.RoleNGO,
		Profile:      Profile{Organization: "Van Seva Sansthan", District: "Bastar"},
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			user.ID,
			"vanseva@example.org",
			user.PasswordHash,
			"ngo",
			false,
			sqlmock.AnyArg(), // profile json
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

	err = repo.Create(context.Background(), User{ID: "user-1", Email: "dup@example.org"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByEmailUnmarshalsProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "is_approved", "profile", "created_at", "updated_at",
	}).AddRow(
		"user-1", "vanseva@example.org", "hash", "ngo", true,
		[]byte(`{"organization":"Van Seva Sansthan","district":"Bastar"}`), now, now,
	)
	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("vanseva@example.org").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "vanseva@example.org")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Role != auth.RoleNGO || !user.IsApproved {
		t.Fatalf("user = %+v", user)
	}
	if user.Profile.Organization != "Van Seva Sansthan" || user.Profile.District != "Bastar" {
		t.Fatalf("profile = %+v", user.Profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM users").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
