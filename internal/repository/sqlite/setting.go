package sqlite

import (
	"context"
	"database/sql"

	"github.com/lababa/lababa/internal/repository"
)

type settingRepo struct {
	db *sql.DB
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	const query = `SELECT key, value, category, updated_at FROM settings WHERE key = ?`
	var s repository.Setting
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	const stmt = `INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?)
                  ON CONFLICT(key) DO UPDATE SET value = excluded.value, category = excluded.category, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, stmt, setting.Key, setting.Value, setting.Category, setting.UpdatedAt)
	return err
}

func (r *settingRepo) InsertIfBlank(ctx context.Context, setting *repository.Setting) error {
	const stmt = `INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?)
                  ON CONFLICT(key) DO UPDATE SET value = excluded.value, category = excluded.category, updated_at = excluded.updated_at
                  WHERE TRIM(settings.value) = ''`
	_, err := r.db.ExecContext(ctx, stmt, setting.Key, setting.Value, setting.Category, setting.UpdatedAt)
	return err
}

func (r *settingRepo) ListByCategory(ctx context.Context, category string) ([]repository.Setting, error) {
	const query = `SELECT key, value, category, updated_at FROM settings WHERE category = ? ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []repository.Setting
	for rows.Next() {
		var s repository.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
