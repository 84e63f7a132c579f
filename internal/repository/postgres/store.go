// 文件路径: internal/repository/postgres/store.go
// 模块说明: PostgreSQL 仓储实现，基于 pgxpool；表结构由 migrations.PostgresSet 维护。
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/lababa/lababa/internal/repository"
)

// Store wires pgx-backed repository implementations.
type Store struct {
	pool     *pgxpool.Pool
	records  repository.RecordRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	friends  repository.FriendRepository
	settings repository.SettingRepository
}

var _ repository.Store = (*Store)(nil)

// Open 建立连接池并在 5 秒内完成一次 Ping。
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewStore constructs a PostgreSQL-backed repository store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		records:  &recordRepo{pool: pool},
		users:    &userRepo{pool: pool},
		sessions: &sessionRepo{pool: pool},
		friends:  &friendRepo{pool: pool},
		settings: &settingRepo{pool: pool},
	}
}

func (s *Store) Records() repository.RecordRepository   { return s.records }
func (s *Store) Users() repository.UserRepository       { return s.users }
func (s *Store) Sessions() repository.SessionRepository { return s.sessions }
func (s *Store) Friends() repository.FriendRepository   { return s.friends }
func (s *Store) Settings() repository.SettingRepository { return s.settings }

// SQLDB 以 database/sql 形式暴露连接池，供 goose 迁移使用；调用方负责关闭返回的句柄。
func (s *Store) SQLDB() *sql.DB {
	return stdlib.OpenDBFromPool(s.pool)
}

// Health pings the pool.
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// recordWhere 生成带 $n 占位符的条件，next 为下一个占位符编号。
func recordWhere(f repository.RecordFilter) (cond string, args []any, next int) {
	var where []string
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Start != nil {
		add("end_time >= $%d", *f.Start)
	}
	if f.End != nil {
		add("end_time < $%d", *f.End)
	}
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	return cond, args, len(args) + 1
}
