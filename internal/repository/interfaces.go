// 文件路径: internal/repository/interfaces.go
// 模块说明: 仓储接口，SQLite 与 PostgreSQL 各有一套实现。
package repository

import (
	"context"

	"github.com/lababa/lababa/internal/record"
)

// Store 暴露每个聚合根对应的仓储接口。
type Store interface {
	Records() RecordRepository
	Users() UserRepository
	Sessions() SessionRepository
	Friends() FriendRepository
	Settings() SettingRepository
	Close() error
}

// RecordRepository 记录的持久化。List 按写入顺序倒序返回（最新的在前）。
type RecordRepository interface {
	Create(ctx context.Context, rec *record.Record) error
	FindByID(ctx context.Context, id string) (*record.Record, error)
	Update(ctx context.Context, rec *record.Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter RecordFilter) ([]record.Record, error)
	Count(ctx context.Context, filter RecordFilter) (int64, error)
	// Totals 返回过滤后记录的条数、时长总和与最长时长。
	Totals(ctx context.Context, filter RecordFilter) (RecordTotals, error)
}

// UserRepository 用户资料，按 id upsert。
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*record.User, error)
	FindByOpenID(ctx context.Context, openID string) (*record.User, error)
	Save(ctx context.Context, user *record.User) error
}

// SessionRepository 登录会话。
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, nowMillis int64) (int64, error)
}

// FriendRepository 好友邀请与好友关系。
type FriendRepository interface {
	CreateInvite(ctx context.Context, invite *FriendInvite) error
	FindInvite(ctx context.Context, id string) (*FriendInvite, error)
	// AddRelation 幂等；关系已存在时返回 false。
	AddRelation(ctx context.Context, rel *FriendRelation) (bool, error)
	ListRelations(ctx context.Context, userID string) ([]FriendRelation, error)
}

// SettingRepository 键值形式的运行时设置，例如自动生成的签名密钥。
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	// InsertIfBlank 仅在键不存在或现值为空白时写入，并发启动时先写者获胜。
	InsertIfBlank(ctx context.Context, setting *Setting) error
	ListByCategory(ctx context.Context, category string) ([]Setting, error)
}
