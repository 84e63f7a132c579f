// 文件路径: internal/bootstrap/database.go
// 模块说明: 按配置打开 SQLite 或 PostgreSQL，执行迁移并返回对应的仓储实现。
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/lababa/lababa/internal/config"
	"github.com/lababa/lababa/internal/migrations"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/repository/postgres"
	"github.com/lababa/lababa/internal/repository/sqlite"
)

// OpenSQLite ensures the parent directory exists, then opens a SQLite connection with sane pragmas.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite 路径不能为空 / SQLite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// OpenPostgres 连接 PostgreSQL；数据库随容器一起启动时可能尚未就绪，按指数退避重试至 maxWait。
func OpenPostgres(ctx context.Context, dsn string, maxWait time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required / 缺少 PostgreSQL 连接串")
	}
	if logger == nil {
		logger = slog.Default()
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = maxWait

	var pool *pgxpool.Pool
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		p, err := postgres.Open(ctx, dsn)
		if err != nil {
			logger.Warn("postgres not ready", "attempt", attempt, "error", err)
			return err
		}
		pool = p
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Database 服务端持久化：仓储、用于 goose 的 *sql.DB 与健康探测。
type Database struct {
	Driver string
	Store  repository.Store
	SQL    *sql.DB
	Ping   func(ctx context.Context) error
	close  func() error
}

// Close 释放仓储与底层连接。
func (d *Database) Close() error {
	if d == nil || d.close == nil {
		return nil
	}
	return d.close()
}

// Migrations 当前驱动对应的迁移集。
func (d *Database) Migrations() (migrations.Set, error) {
	return migrations.ForDriver(d.Driver)
}

// OpenDatabase 按 cfg.Driver 打开数据库，不执行迁移。
func OpenDatabase(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Database, error) {
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		store := sqlite.NewStore(db)
		return &Database{Driver: "sqlite", Store: store, SQL: db, Ping: db.PingContext, close: store.Close}, nil
	case "postgres", "postgresql", "pgx":
		pool, err := OpenPostgres(ctx, cfg.DSN, 30*time.Second, logger)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		sqlDB := store.SQLDB()
		return &Database{
			Driver: "postgres",
			Store:  store,
			SQL:    sqlDB,
			Ping:   store.Health,
			close: func() error {
				_ = sqlDB.Close()
				return store.Close()
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q / 不支持的数据库驱动", cfg.Driver)
	}
}

// MigrateUp 把数据库升级到最新版本。
func (d *Database) MigrateUp() error {
	set, err := d.Migrations()
	if err != nil {
		return err
	}
	if err := migrations.Up(d.SQL, set); err != nil {
		return fmt.Errorf("migrate %s: %w", set.Name, err)
	}
	return nil
}
