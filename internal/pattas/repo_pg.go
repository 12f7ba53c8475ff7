package pattas

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"patta-backend/internal/extract"
)

type PGRepo struct {
	DB *sql.DB
}

const pattaColumns = `id, claimant_name, district, village, state, approval_date, land_area,
latitude, longitude, file_path, file_name, extracted_data, is_verified, uploaded_by,
created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, patta Patta) error {
	const query = `
INSERT INTO pattas (id, claimant_name, district, village, state, approval_date, land_area,
  latitude, longitude, file_path, file_name, extracted_data, is_verified, uploaded_by,
  created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`
	extracted, err := json.Marshal(patta.ExtractedData)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	var lat, lng any
	if patta.Coordinates != nil {
		lat = patta.Coordinates.Latitude
		lng = patta.Coordinates.Longitude
	}
	_, err = r.DB.ExecContext(ctx, query,
		patta.ID,
		patta.ClaimantName,
		patta.District,
		patta.Village,
		patta.State,
		patta.ApprovalDate,
		patta.LandArea,
		lat,
		lng,
		patta.FilePath,
		patta.FileName,
		extracted,
		patta.IsVerified,
		patta.UploadedBy,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Patta, error) {
	query := `SELECT ` + pattaColumns + ` FROM pattas WHERE id = $1 LIMIT 1`
	patta, err := scanPatta(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Patta{}, ErrNotFound
		}
		return Patta{}, err
	}
	return patta, nil
}

func (r *PGRepo) Update(ctx context.Context, patta Patta) error {
	const query = `
UPDATE pattas SET
  claimant_name = $2,
  district = $3,
  village = $4,
  state = $5,
  approval_date = $6,
  land_area = $7,
  latitude = $8,
  longitude = $9,
  extracted_data = $10,
  is_verified = $11,
  updated_at = now()
WHERE id = $1`
	extracted, err := json.Marshal(patta.ExtractedData)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	var lat, lng any
	if patta.Coordinates != nil {
		lat = patta.Coordinates.Latitude
		lng = patta.Coordinates.Longitude
	}
	res, err := r.DB.ExecContext(ctx, query,
		patta.ID,
		patta.ClaimantName,
		patta.District,
		patta.Village,
		patta.State,
		patta.ApprovalDate,
		patta.LandArea,
		lat,
		lng,
		extracted,
		patta.IsVerified,
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
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pattas WHERE id = $1`, id)
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

func (r *PGRepo) List(ctx context.Context, filter Filter) ([]Patta, int, error) {
	where := []string{"true"}
	var args []any

	if filter.District != "" {
		args = append(args, "%"+filter.District+"%")
		where = append(where, fmt.Sprintf("district ILIKE $%d", len(args)))
	}
	if filter.State != "" {
		args = append(args, "%"+filter.State+"%")
		where = append(where, fmt.Sprintf("state ILIKE $%d", len(args)))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		where = append(where, fmt.Sprintf("is_verified = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(claimant_name ILIKE $%d OR village ILIKE $%d OR district ILIKE $%d)", len(args), len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM pattas WHERE "+clause, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM pattas WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		pattaColumns, clause, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Patta
	for rows.Next() {
		patta, err := scanPatta(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, patta)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepo) MapData(ctx context.Context) ([]MapPoint, error) {
	const query = `
SELECT id, claimant_name, district, village, latitude, longitude, is_verified
FROM pattas
WHERE latitude IS NOT NULL AND longitude IS NOT NULL
ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapPoint
	for rows.Next() {
		var p MapPoint
		if err := rows.Scan(&p.ID, &p.ClaimantName, &p.District, &p.Village, &p.Latitude, &p.Longitude, &p.IsVerified); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, verified *bool) (int, error) {
	query := `SELECT count(*) FROM pattas`
	var args []any
	if verified != nil {
		query += ` WHERE is_verified = $1`
		args = append(args, *verified)
	}
	var total int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *PGRepo) DistrictCounts(ctx context.Context) ([]DistrictCount, error) {
	const query = `
SELECT district, count(*)
FROM pattas
WHERE district NOT ILIKE '%required%'
GROUP BY district
ORDER BY count(*) DESC`
	rows, err := r.DB.QueryContext(ctx, query)
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

func (r *PGRepo) MonthlyCounts(ctx context.Context) ([]MonthCount, error) {
	const query = `
SELECT to_char(created_at, 'YYYY-MM'), count(*)
FROM pattas
GROUP BY to_char(created_at, 'YYYY-MM')
ORDER BY 1`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatta(row rowScanner) (Patta, error) {
	var patta Patta
	var approvalDate sql.NullTime
	var landArea sql.NullFloat64
	var lat, lng sql.NullFloat64
	var extracted []byte
	var updatedAt sql.NullTime

	err := row.Scan(
		&patta.ID,
		&patta.ClaimantName,
		&patta.District,
		&patta.Village,
		&patta.State,
		&approvalDate,
		&landArea,
		&lat,
		&lng,
		&patta.FilePath,
		&patta.FileName,
		&extracted,
		&patta.IsVerified,
		&patta.UploadedBy,
		&patta.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Patta{}, err
	}
	if approvalDate.Valid {
		d := approvalDate.Time
		patta.ApprovalDate = &d
	}
	if landArea.Valid {
		a := landArea.Float64
		patta.LandArea = &a
	}
	if lat.Valid && lng.Valid {
		patta.Coordinates = &extract.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &patta.ExtractedData); err != nil {
			return Patta{}, fmt.Errorf("unmarshal extracted data: %w", err)
		}
	}
	if updatedAt.Valid {
		patta.UpdatedAt = updatedAt.Time
	}
	return patta, nil
}

var _ Repo = (*PGRepo)(nil)
