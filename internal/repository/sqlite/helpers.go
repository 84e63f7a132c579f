// 文件路径: internal/repository/sqlite/helpers.go
// 模块说明: SQLite 实现共用的小工具。
package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lababa/lababa/internal/repository"
)

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// notFound 把 sql.ErrNoRows 统一转换为 repository.ErrNotFound。
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func recordWhere(f repository.RecordFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Start != nil {
		where = append(where, "end_time >= ?")
		args = append(args, *f.Start)
	}
	if f.End != nil {
		where = append(where, "end_time < ?")
		args = append(args, *f.End)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}
