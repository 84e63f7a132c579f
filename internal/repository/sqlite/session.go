package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lababa/lababa/internal/repository"
)

// sessionRepo stores login sessions referenced by JWT session ids.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, session *repository.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return fmt.Errorf("session id 和 userID 不能为空")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions(id, user_id, expires_at, created_at) VALUES(?, ?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*repository.Session, error) {
	var s repository.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireAffected(res)
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, nowMillis int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, nowMillis)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
