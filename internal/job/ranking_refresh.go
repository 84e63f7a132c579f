package job

import (
	"context"
	"fmt"

	"github.com/lababa/lababa/internal/stats"
)

// RankingCache 排行榜缓存的失效与预热入口。
type RankingCache interface {
	Invalidate(ctx context.Context)
	List(ctx context.Context, period string) ([]stats.RankingEntry, error)
}

// RankingRefreshJob 定期清空排行榜缓存并预热各周期，
// 使跨越日/周/月边界后的首个请求不必读到旧窗口。
type RankingRefreshJob struct {
	Ranking RankingCache
	Periods []stats.Period
}

// NewRankingRefreshJob 未指定周期时预热 day、week、month、total。
func NewRankingRefreshJob(ranking RankingCache, periods ...stats.Period) *RankingRefreshJob {
	if len(periods) == 0 {
		periods = []stats.Period{stats.PeriodDay, stats.PeriodWeek, stats.PeriodMonth, stats.PeriodTotal}
	}
	return &RankingRefreshJob{Ranking: ranking, Periods: periods}
}

// Name implements Runnable interface.
func (j *RankingRefreshJob) Name() string {
	return "ranking.refresh"
}

// Run implements Runnable interface.
func (j *RankingRefreshJob) Run(ctx context.Context) error {
	if j == nil || j.Ranking == nil {
		return fmt.Errorf("ranking refresh job dependencies not configured / 排行榜刷新任务依赖未配置")
	}
	j.Ranking.Invalidate(ctx)
	for _, p := range j.Periods {
		if _, err := j.Ranking.List(ctx, string(p)); err != nil {
			return fmt.Errorf("ranking refresh %s: %w", p, err)
		}
	}
	return nil
}
