package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
)

// recordRepo 负责 records 表。seq 单调递增，用于"最新在前"的排序。
type recordRepo struct {
	db *sql.DB
}

const recordColumns = `id, user_id, start_time, end_time, duration, color, status, shape, amount, note, is_completed, created_at`

func (r *recordRepo) Create(ctx context.Context, rec *record.Record) error {
	const stmt = `INSERT INTO records(` + recordColumns + `, seq)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records))`
	_, err := r.db.ExecContext(ctx, stmt,
		rec.ID,
		rec.UserID,
		rec.StartTime,
		rec.EndTime,
		rec.Duration,
		string(rec.Color),
		string(rec.Status),
		string(rec.Shape),
		string(rec.Amount),
		rec.Note,
		boolToInt(rec.IsCompleted),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *recordRepo) FindByID(ctx context.Context, id string) (*record.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// Update 覆盖除 id、user_id、created_at 以外的字段。
func (r *recordRepo) Update(ctx context.Context, rec *record.Record) error {
	const stmt = `UPDATE records SET
		start_time = ?, end_time = ?, duration = ?, color = ?, status = ?, shape = ?, amount = ?,
		note = ?, is_completed = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		rec.StartTime,
		rec.EndTime,
		rec.Duration,
		string(rec.Color),
		string(rec.Status),
		string(rec.Shape),
		string(rec.Amount),
		rec.Note,
		boolToInt(rec.IsCompleted),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireAffected(res)
}

func (r *recordRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res)
}

func (r *recordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]record.Record, error) {
	cond, args := recordWhere(filter)
	query := `SELECT ` + recordColumns + ` FROM records` + cond + ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	items := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func (r *recordRepo) Count(ctx context.Context, filter repository.RecordFilter) (int64, error) {
	cond, args := recordWhere(filter)
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func (r *recordRepo) Totals(ctx context.Context, filter repository.RecordFilter) (repository.RecordTotals, error) {
	cond, args := recordWhere(filter)
	var totals repository.RecordTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration), 0), COALESCE(MAX(duration), 0) FROM records`+cond, args...,
	).Scan(&totals.Count, &totals.Total, &totals.Longest)
	if err != nil {
		return repository.RecordTotals{}, fmt.Errorf("sum records: %w", err)
	}
	return totals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*record.Record, error) {
	var (
		rec       record.Record
		color     string
		status    string
		shape     string
		amount    string
		completed int
	)
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.StartTime,
		&rec.EndTime,
		&rec.Duration,
		&color,
		&status,
		&shape,
		&amount,
		&rec.Note,
		&completed,
		&rec.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	rec.Color = record.Color(color)
	rec.Status = record.Status(status)
	rec.Shape = record.Shape(shape)
	rec.Amount = record.Amount(amount)
	rec.IsCompleted = completed != 0
	return &rec, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
