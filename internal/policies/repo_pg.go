package policies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const policyColumns = `id, name, description, category, policy_number, file_path, file_name,
file_size, mime_type, uploaded_by, is_active, download_count, view_count,
created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, p Policy) error {
	const query = `
INSERT INTO policies (id, name, description, category, policy_number, file_path, file_name,
  file_size, mime_type, uploaded_by, is_active, download_count, view_count,
  created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Category,
		p.PolicyNumber,
		p.FilePath,
		p.FileName,
		p.FileSize,
		p.MimeType,
		p.UploadedBy,
		p.IsActive,
		p.DownloadCount,
		p.ViewCount,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1 LIMIT 1`
	p, err := scanPolicy(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Policy{}, ErrNotFound
		}
		return Policy{}, err
	}
	return p, nil
}

func (r *PGRepo) Update(ctx context.Context, p Policy) error {
	const query = `
UPDATE policies SET
  name = $2,
  description = $3,
  category = $4,
  is_active = $5,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.IsActive)
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

func (r *PGRepo) List(ctx context.Context, filter Filter) ([]Policy, int, error) {
	where := []string{"is_active = true"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR policy_number ILIKE $%d)", len(args), len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM policies WHERE "+clause, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM policies WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		policyColumns, clause, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepo) CountForYear(ctx context.Context, year int) (int, error) {
	const query = `SELECT count(*) FROM policies WHERE date_part('year', created_at) = $1`
	var count int
	err := r.DB.QueryRowContext(ctx, query, year).Scan(&count)
	return count, err
}

func (r *PGRepo) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, id, "view_count")
}

func (r *PGRepo) IncrementDownloads(ctx context.Context, id string) error {
	return r.increment(ctx, id, "download_count")
}

func (r *PGRepo) increment(ctx context.Context, id, column string) error {
	query := fmt.Sprintf(`UPDATE policies SET %s = %s + 1, updated_at = now() WHERE id = $1`, column, column)
	res, err := r.DB.ExecContext(ctx, query, id)
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

func (r *PGRepo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	const query = `
SELECT category, count(*)
FROM policies
WHERE is_active = true
GROUP BY category
ORDER BY count(*) DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *PGRepo) Totals(ctx context.Context) (total, active, views, downloads int, err error) {
	const query = `
SELECT count(*),
       count(*) FILTER (WHERE is_active),
       coalesce(sum(view_count), 0),
       coalesce(sum(download_count), 0)
FROM policies`
	err = r.DB.QueryRowContext(ctx, query).Scan(&total, &active, &views, &downloads)
	return total, active, views, downloads, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (Policy, error) {
	var p Policy
	var description sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.Category,
		&p.PolicyNumber,
		&p.FilePath,
		&p.FileName,
		&p.FileSize,
		&p.MimeType,
		&p.UploadedBy,
		&p.IsActive,
		&p.DownloadCount,
		&p.ViewCount,
		&p.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Policy{}, err
	}
	p.Description = description.String
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

var _ Repo = (*PGRepo)(nil)
