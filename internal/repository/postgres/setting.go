package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lababa/lababa/internal/repository"
)

type settingRepo struct {
	pool *pgxpool.Pool
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	var s repository.Setting
	err := r.pool.QueryRow(ctx,
		`SELECT key, value, category, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, category, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, category = EXCLUDED.category, updated_at = EXCLUDED.updated_at`,
		setting.Key, setting.Value, setting.Category, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

func (r *settingRepo) InsertIfBlank(ctx context.Context, setting *repository.Setting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, category, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, category = EXCLUDED.category, updated_at = EXCLUDED.updated_at
		 WHERE TRIM(settings.value) = ''`,
		setting.Key, setting.Value, setting.Category, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert setting: %w", err)
	}
	return nil
}

func (r *settingRepo) ListByCategory(ctx context.Context, category string) ([]repository.Setting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, category, updated_at FROM settings WHERE category = $1 ORDER BY key`, category)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
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
