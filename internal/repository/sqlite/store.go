// 文件路径: internal/repository/sqlite/store.go
// 模块说明: SQLite 仓储实现的入口，表结构由 migrations.SQLiteSet 维护。
package sqlite

import (
	"database/sql"

	"github.com/lababa/lababa/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db       *sql.DB
	records  repository.RecordRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	friends  repository.FriendRepository
	settings repository.SettingRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		records:  &recordRepo{db: db},
		users:    &userRepo{db: db},
		sessions: &sessionRepo{db: db},
		friends:  &friendRepo{db: db},
		settings: &settingRepo{db: db},
	}
}

func (s *Store) Records() repository.RecordRepository {
	return s.records
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) Sessions() repository.SessionRepository {
	return s.sessions
}

func (s *Store) Friends() repository.FriendRepository {
	return s.friends
}

func (s *Store) Settings() repository.SettingRepository {
	return s.settings
}

// DB exposes the underlying handle (used by migrations and health checks).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
