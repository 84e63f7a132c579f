// 文件路径: internal/service/ranking.go
// 模块说明: 排行榜；结果按周期缓存在进程内，记录变更时整体失效。
package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/lababa/lababa/internal/cache"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
)

// DefaultRankingTTL 未配置 ranking.cache_ttl 时的缓存时长。
const DefaultRankingTTL = 30 * time.Second

// RankingService 计算各周期的用户排行。
type RankingService interface {
	List(ctx context.Context, period string) ([]stats.RankingEntry, error)
	// Invalidate 清空全部周期的缓存。
	Invalidate(ctx context.Context)
}

type rankingService struct {
	records repository.RecordRepository
	cache   cache.Store
	ttl     time.Duration
	clock   stats.Clock
	logger  *slog.Logger
}

// NewRankingService wires ranking computation. cacheStore 为 nil 时不缓存。
func NewRankingService(records repository.RecordRepository, cacheStore cache.Store, ttl time.Duration, clock stats.Clock, logger *slog.Logger) RankingService {
	if ttl <= 0 {
		ttl = DefaultRankingTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	var ns cache.Store
	if cacheStore != nil {
		ns = cacheStore.Namespace("ranking")
	}
	return &rankingService{records: records, cache: ns, ttl: ttl, clock: clockOrDefault(clock), logger: logger}
}

func (s *rankingService) List(ctx context.Context, period string) ([]stats.RankingEntry, error) {
	p := stats.ParsePeriod(period)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, string(p)); ok {
			if entries, ok := cached.([]stats.RankingEntry); ok {
				return slices.Clone(entries), nil
			}
		}
	}

	now := s.clock()
	filter := repository.RecordFilter{}
	if start, end, bounded := stats.Window(p, now); bounded {
		filter.Start = &start
		filter.End = &end
	}
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, translateRepoError("list ranking records", err)
	}
	entries := stats.Rank(records, p, now)
	if s.cache != nil {
		s.cache.Set(ctx, string(p), slices.Clone(entries), s.ttl)
	}
	s.logger.Debug("ranking computed", "period", p, "entries", len(entries), "records", len(records))
	return entries, nil
}

func (s *rankingService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
}
