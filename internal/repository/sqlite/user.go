// 文件路径: internal/repository/sqlite/user.go
// 模块说明: users 表的 SQLite 实现。
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
)

// userRepo 负责 users 表的 SQLite 实现。
type userRepo struct {
	db *sql.DB
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*record.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, nick_name, avatar_url, open_id FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *userRepo) FindByOpenID(ctx context.Context, openID string) (*record.User, error) {
	trimmed := strings.TrimSpace(openID)
	if trimmed == "" {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, nick_name, avatar_url, open_id FROM users WHERE open_id = ? LIMIT 1`, trimmed)
	return scanUser(row)
}

// Save upsert 用户记录，维护更新时间。
func (r *userRepo) Save(ctx context.Context, user *record.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required / 用户 id 不能为空")
	}
	const stmt = `INSERT INTO users(id, nick_name, avatar_url, open_id, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nick_name = excluded.nick_name,
			avatar_url = excluded.avatar_url,
			open_id = excluded.open_id,
			updated_at = excluded.updated_at`
	now := time.Now().UnixMilli()
	if _, err := r.db.ExecContext(ctx, stmt, user.ID, user.NickName, user.AvatarURL, user.OpenID, now, now); err != nil {
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
