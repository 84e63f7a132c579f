package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
)

type recordRepo struct {
	pool *pgxpool.Pool
}

const recordColumns = `id, user_id, start_time, end_time, duration, color, status, shape, amount, note, is_completed, created_at`

func (r *recordRepo) Create(ctx context.Context, rec *record.Record) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO records (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.UserID, rec.StartTime, rec.EndTime, rec.Duration,
		string(rec.Color), string(rec.Status), string(rec.Shape), string(rec.Amount),
		rec.Note, rec.IsCompleted, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *recordRepo) FindByID(ctx context.Context, id string) (*record.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *recordRepo) Update(ctx context.Context, rec *record.Record) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE records SET
		   start_time = $2, end_time = $3, duration = $4, color = $5, status = $6,
		   shape = $7, amount = $8, note = $9, is_completed = $10
		 WHERE id = $1`,
		rec.ID, rec.StartTime, rec.EndTime, rec.Duration,
		string(rec.Color), string(rec.Status), string(rec.Shape), string(rec.Amount),
		rec.Note, rec.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *recordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]record.Record, error) {
	cond, args, next := recordWhere(filter)
	query := `SELECT ` + recordColumns + ` FROM records` + cond + ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, next, next+1)
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}
	rows, err := r.pool.Query(ctx, query, args...)
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
	cond, args, _ := recordWhere(filter)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records`+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func (r *recordRepo) Totals(ctx context.Context, filter repository.RecordFilter) (repository.RecordTotals, error) {
	cond, args, _ := recordWhere(filter)
	var totals repository.RecordTotals
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration), 0)::BIGINT, COALESCE(MAX(duration), 0) FROM records`+cond, args...,
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
		rec                          record.Record
		color, status, shape, amount string
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.StartTime, &rec.EndTime, &rec.Duration,
		&color, &status, &shape, &amount,
		&rec.Note, &rec.IsCompleted, &rec.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	rec.Color = record.Color(color)
	rec.Status = record.Status(status)
	rec.Shape = record.Shape(shape)
	rec.Amount = record.Amount(amount)
	return &rec, nil
}
