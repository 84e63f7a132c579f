// 文件路径: internal/migrations/runner.go
// 模块说明: goose 迁移入口，服务端（SQLite / PostgreSQL）与客户端缓存库各有一套脚本。
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// Set 一组迁移脚本及其方言。
type Set struct {
	Name    string
	Dialect string
	FS      embed.FS
	Dir     string
}

var (
	// SQLiteSet 服务端 SQLite 库。
	SQLiteSet = Set{Name: "sqlite", Dialect: "sqlite3", FS: SQLite, Dir: "sqlite"}
	// PostgresSet 服务端 PostgreSQL 库。
	PostgresSet = Set{Name: "postgres", Dialect: "postgres", FS: Postgres, Dir: "postgres"}
	// ClientSet 客户端本地缓存库（kv_entries）。
	ClientSet = Set{Name: "client", Dialect: "sqlite3", FS: Client, Dir: "client"}
)

// goose 的方言与 FS 是包级全局状态，串行化访问。
var gooseMu sync.Mutex

// ForDriver 根据数据库驱动名选择服务端迁移集。
func ForDriver(driver string) (Set, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return SQLiteSet, nil
	case "postgres", "postgresql", "pgx":
		return PostgresSet, nil
	default:
		return Set{}, fmt.Errorf("unsupported database driver %q / 不支持的数据库驱动", driver)
	}
}

func (s Set) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect(s.Dialect); err != nil {
		return fmt.Errorf("set goose dialect %s: %w", s.Dialect, err)
	}
	goose.SetBaseFS(s.FS)
	defer goose.SetBaseFS(nil)
	return fn()
}

// Up migrates the schema to the latest version.
func Up(db *sql.DB, set Set) error {
	return set.run(func() error { return goose.Up(db, set.Dir) })
}

// Down rolls back a single migration.
func Down(db *sql.DB, set Set) error {
	return set.run(func() error { return goose.Down(db, set.Dir) })
}

// Status prints migration status.
func Status(db *sql.DB, set Set) error {
	return set.run(func() error { return goose.Status(db, set.Dir) })
}
