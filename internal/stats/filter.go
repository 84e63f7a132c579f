// Package stats 是纯函数的聚合引擎：过滤、汇总、周期判定与排行。
// 这里不做任何 I/O，"当前时间"一律由调用方注入。
package stats

import "github.com/lababa/lababa/internal/record"

// Filter 描述记录过滤条件，零值字段表示该维度不受限。
// Start 为 endTime 的闭区间下界，End 为 endTime 的开区间上界。
type Filter struct {
	UserID string `json:"userId,omitempty"`
	Start  *int64 `json:"start,omitempty"`
	End    *int64 `json:"end,omitempty"`
}

// Match 判断单条记录是否满足过滤条件。
func (f Filter) Match(r record.Record) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Start != nil && r.EndTime < *f.Start {
		return false
	}
	if f.End != nil && r.EndTime >= *f.End {
		return false
	}
	return true
}

// Apply 返回满足条件的子集，保持原有顺序。
func Apply(records []record.Record, f Filter) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Page 对已过滤集合做 offset/limit 切片，越界时返回空切片。
func Page(records []record.Record, offset, limit int) []record.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) || limit <= 0 {
		return []record.Record{}
	}
	end := len(records)
	if limit < end-offset {
		end = offset + limit
	}
	return append([]record.Record(nil), records[offset:end]...)
}
