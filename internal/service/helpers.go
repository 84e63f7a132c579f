package service

import (
	"errors"
	"fmt"

	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
)

const (
	// DefaultListLimit /api/records/list 未指定 limit 时的页大小。
	DefaultListLimit = 50
	// DefaultIndexLimit /api/index/list 未指定 limit 时的页大小。
	DefaultIndexLimit = 10
)

// RecordQuery 列表类接口的过滤条件，Start/End 作用于 endTime。
type RecordQuery struct {
	UserID string
	Start  *int64
	End    *int64
	Offset int
	Limit  int
}

func (q RecordQuery) filter(defaultLimit int) repository.RecordFilter {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return repository.RecordFilter{
		UserID: q.UserID,
		Start:  q.Start,
		End:    q.End,
		Offset: max(q.Offset, 0),
		Limit:  limit,
	}
}

func (q RecordQuery) unpaged() repository.RecordFilter {
	return repository.RecordFilter{UserID: q.UserID, Start: q.Start, End: q.End}
}

func clockOrDefault(clock stats.Clock) stats.Clock {
	if clock == nil {
		return stats.SystemClock
	}
	return clock
}

// translateRepoError 把仓储的 NotFound 转成服务层错误，其余原样包装。
func translateRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nowMillis(clock stats.Clock) int64 {
	return clock().UnixMilli()
}
