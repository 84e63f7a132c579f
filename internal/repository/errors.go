// 文件路径: internal/repository/errors.go
// 模块说明: 仓储层公共错误。
package repository

import "errors"

var (
	// ErrNotFound 表示查询未返回数据。
	ErrNotFound = errors.New("not found / 未找到数据")
)
