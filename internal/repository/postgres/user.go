package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*record.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, nick_name, avatar_url, open_id FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) FindByOpenID(ctx context.Context, openID string) (*record.User, error) {
	trimmed := strings.TrimSpace(openID)
	if trimmed == "" {
		return nil, repository.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT id, nick_name, avatar_url, open_id FROM users WHERE open_id = $1 LIMIT 1`, trimmed)
	return scanUser(row)
}

func (r *userRepo) Save(ctx context.Context, user *record.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required / 用户 id 不能为空")
	}
	now := time.Now().UnixMilli()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, nick_name, avatar_url, open_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET nick_name = EXCLUDED.nick_name,
		     avatar_url = EXCLUDED.avatar_url,
		     open_id = EXCLUDED.open_id,
		     updated_at = EXCLUDED.updated_at`,
		user.ID, user.NickName, user.AvatarURL, user.OpenID, now,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*record.User, error) {
	var u record.User
	if err := row.Scan(&u.ID, &u.NickName, &u.AvatarURL, &u.OpenID); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
