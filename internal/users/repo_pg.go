package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"patta-backend/internal/shared/auth"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, password_hash, role, is_approved, profile, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.IsApproved,
		profile,
	)
	if err != nil && strings.Contains(err.Error(), "users_email_key") {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT id, email, password_hash, role, is_approved, profile, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, email, password_hash, role, is_approved, profile, created_at, updated_at
FROM users
WHERE lower(email) = lower($1)
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) Update(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  email = $2,
  password_hash = $3,
  role = $4,
  is_approved = $5,
  profile = $6,
  updated_at = now()
WHERE id = $1`
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.IsApproved,
		profile,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListNGOs(ctx context.Context, filter NGOFilter) ([]User, int, error) {
	where := []string{"role = $1"}
	args := []any{string(auth.RoleNGO)}

	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		where = append(where, fmt.Sprintf("is_approved = $%d", len(args)))
	}
	if filter.District != "" {
		args = append(args, "%"+filter.District+"%")
		where = append(where, fmt.Sprintf("profile->>'district' ILIKE $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT count(*) FROM users WHERE " + clause
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
SELECT id, email, password_hash, role, is_approved, profile, created_at, updated_at
FROM users
WHERE %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepo) CountNGOs(ctx context.Context, approved *bool) (int, error) {
	query := `SELECT count(*) FROM users WHERE role = $1`
	args := []any{string(auth.RoleNGO)}
	if approved != nil {
		query += ` AND is_approved = $2`
		args = append(args, *approved)
	}
	var total int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *PGRepo) NGODistrictCounts(ctx context.Context) ([]DistrictCount, error) {
	const query = `
SELECT coalesce(profile->>'district', ''), count(*)
FROM users
WHERE role = $1 AND is_approved = true
GROUP BY profile->>'district'
ORDER BY count(*) DESC`
	rows, err := r.DB.QueryContext(ctx, query, string(auth.RoleNGO))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DistrictCount
	for rows.Next() {
		var dc DistrictCount
		if err := rows.Scan(&dc.District, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	user, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) scanRow(row rowScanner) (User, error) {
	var user User
	var role string
	var profile []byte
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsApproved,
		&profile,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Role = auth.Role(role)
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &user.Profile); err != nil {
			return User{}, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
