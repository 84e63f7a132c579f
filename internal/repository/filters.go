// 文件路径: internal/repository/filters.go
// 模块说明: 列表查询条件。
package repository

// RecordFilter 约束记录查询。Start/End 作用于 endTime，分别为闭区间下界与开区间上界；
// Limit <= 0 表示不分页。
type RecordFilter struct {
	UserID string
	Start  *int64
	End    *int64
	Offset int
	Limit  int
}
