package assignments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const assignmentColumns = `id, assigned_to, assigned_by, title, description, area, instructions,
objectives, deliverables, deadline, priority, status, progress, report,
completion_notes, completed_at, feedback, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, a Assignment) error {
	const query = `
INSERT INTO assignments (id, assigned_to, assigned_by, title, description, area, instructions,
  objectives, deliverables, deadline, priority, status, progress, report,
  completion_notes, completed_at, feedback, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())`
	area, objectives, deliverables, report, feedback, err := marshalJSONFields(a)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.AssignedTo,
		a.AssignedBy,
		a.Title,
		a.Description,
		area,
		a.Instructions,
		objectives,
		deliverables,
		a.Deadline,
		string(a.Priority),
		string(a.Status),
		a.Progress,
		report,
		a.CompletionNotes,
		a.CompletedAt,
		feedback,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1 LIMIT 1`
	a, err := scanAssignment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

func (r *PGRepo) Update(ctx context.Context, a Assignment) error {
	const query = `
UPDATE assignments SET
  title = $2,
  description = $3,
  area = $4,
  instructions = $5,
  objectives = $6,
  deliverables = $7,
  deadline = $8,
  priority = $9,
  status = $10,
  progress = $11,
  report = $12,
  completion_notes = $13,
  completed_at = $14,
  feedback = $15,
  updated_at = now()
WHERE id = $1`
	area, objectives, deliverables, report, feedback, err := marshalJSONFields(a)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.Title,
		a.Description,
		area,
		a.Instructions,
		objectives,
		deliverables,
		a.Deadline,
		string(a.Priority),
		string(a.Status),
		a.Progress,
		report,
		a.CompletionNotes,
		a.CompletedAt,
		feedback,
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
	res, err := r.DB.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
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

func (r *PGRepo) List(ctx context.Context, filter Filter) ([]Assignment, int, error) {
	where := []string{"true"}
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM assignments WHERE "+clause, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		assignmentColumns, clause, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepo) CountByStatus(ctx context.Context, assignedTo string) (map[Status]int, error) {
	query := `SELECT status, count(*) FROM assignments`
	var args []any
	if assignedTo != "" {
		query += ` WHERE assigned_to = $1`
		args = append(args, assignedTo)
	}
	query += ` GROUP BY status`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func (r *PGRepo) PriorityCounts(ctx context.Context) (map[Priority]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT priority, count(*) FROM assignments GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Priority]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[Priority(priority)] = count
	}
	return counts, rows.Err()
}

func (r *PGRepo) MonthlyCounts(ctx context.Context) ([]MonthCount, error) {
	const query = `
SELECT to_char(created_at, 'YYYY-MM'), count(*)
FROM assignments
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

// marshalJSONFields prepares the JSONB column values. Absent report and
// feedback come back as untyped nil so the driver writes NULL, not an empty
// byte slice.
func marshalJSONFields(a Assignment) (area, objectives, deliverables []byte, report, feedback any, err error) {
	if area, err = json.Marshal(a.Area); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal area: %w", err)
	}
	if objectives, err = json.Marshal(a.Objectives); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal objectives: %w", err)
	}
	if deliverables, err = json.Marshal(a.Deliverables); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal deliverables: %w", err)
	}
	if a.Report != nil {
		raw, merr := json.Marshal(a.Report)
		if merr != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("marshal report: %w", merr)
		}
		report = raw
	}
	if a.Feedback != nil {
		raw, merr := json.Marshal(a.Feedback)
		if merr != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("marshal feedback: %w", merr)
		}
		feedback = raw
	}
	return area, objectives, deliverables, report, feedback, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var a Assignment
	var priority, status string
	var description, completionNotes sql.NullString
	var area, objectives, deliverables, report, feedback []byte
	var completedAt sql.NullTime
	var updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.AssignedTo,
		&a.AssignedBy,
		&a.Title,
		&description,
		&area,
		&a.Instructions,
		&objectives,
		&deliverables,
		&a.Deadline,
		&priority,
		&status,
		&a.Progress,
		&report,
		&completionNotes,
		&completedAt,
		&feedback,
		&a.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Assignment{}, err
	}
	a.Description = description.String
	a.CompletionNotes = completionNotes.String
	a.Priority = Priority(priority)
	a.Status = Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	if len(area) > 0 {
		if err := json.Unmarshal(area, &a.Area); err != nil {
			return Assignment{}, fmt.Errorf("unmarshal area: %w", err)
		}
	}
	if len(objectives) > 0 {
		if err := json.Unmarshal(objectives, &a.Objectives); err != nil {
			return Assignment{}, fmt.Errorf("unmarshal objectives: %w", err)
		}
	}
	if len(deliverables) > 0 {
		if err := json.Unmarshal(deliverables, &a.Deliverables); err != nil {
			return Assignment{}, fmt.Errorf("unmarshal deliverables: %w", err)
		}
	}
	if len(report) > 0 {
		a.Report = &Report{}
		if err := json.Unmarshal(report, a.Report); err != nil {
			return Assignment{}, fmt.Errorf("unmarshal report: %w", err)
		}
	}
	if len(feedback) > 0 {
		a.Feedback = &Feedback{}
		if err := json.Unmarshal(feedback, a.Feedback); err != nil {
			return Assignment{}, fmt.Errorf("unmarshal feedback: %w", err)
		}
	}
	return a, nil
}

var _ Repo = (*PGRepo)(nil)
