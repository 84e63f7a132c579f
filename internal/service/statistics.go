// 文件路径: internal/service/statistics.go
// 模块说明: 汇总、首页、月历与个人概览统计。
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
)

// StatisticsService aggregates records for dashboards.
type StatisticsService interface {
	Summary(ctx context.Context, query RecordQuery) (stats.Summary, error)
	Index(ctx context.Context, query RecordQuery) (*IndexPage, error)
	MonthDays(ctx context.Context, userID string, year, month int) (stats.MonthReport, error)
	Overview(ctx context.Context, userID, period string) (stats.Overview, error)
}

// IndexPage 首页：一页记录加上同一过滤条件下的汇总。
type IndexPage struct {
	RecordPage
	Summary stats.Summary `json:"summary"`
}

type statisticsService struct {
	records repository.RecordRepository
	clock   stats.Clock
}

func NewStatisticsService(records repository.RecordRepository, clock stats.Clock) StatisticsService {
	return &statisticsService{records: records, clock: clockOrDefault(clock)}
}

func (s *statisticsService) Summary(ctx context.Context, query RecordQuery) (stats.Summary, error) {
	totals, err := s.records.Totals(ctx, query.unpaged())
	if err != nil {
		return stats.Summary{}, translateRepoError("record totals", err)
	}
	return stats.SummaryFromTotals(totals.Count, totals.Total, totals.Longest), nil
}

func (s *statisticsService) Index(ctx context.Context, query RecordQuery) (*IndexPage, error) {
	page, err := listPage(ctx, s.records, query, DefaultIndexLimit)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, query)
	if err != nil {
		return nil, err
	}
	return &IndexPage{RecordPage: *page, Summary: summary}, nil
}

func (s *statisticsService) MonthDays(ctx context.Context, userID string, year, month int) (stats.MonthReport, error) {
	loc := s.clock().Location()
	start, end, month := stats.MonthBounds(year, month, loc)
	records, err := s.records.List(ctx, repository.RecordFilter{UserID: userID, Start: &start, End: &end})
	if err != nil {
		return stats.MonthReport{}, translateRepoError("list month records", err)
	}
	return stats.MonthDays(records, year, month, loc), nil
}

func (s *statisticsService) Overview(ctx context.Context, userID, period string) (stats.Overview, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return stats.Overview{}, ErrMissingUserID
	}
	p := stats.Period(strings.ToLower(strings.TrimSpace(period)))
	if p == "" {
		p = stats.PeriodWeek
	}
	now := s.clock()
	start, end, bounded := stats.Window(p, now)
	if !bounded {
		return stats.Overview{}, ErrInvalidPeriod
	}
	records, err := s.records.List(ctx, repository.RecordFilter{UserID: userID, Start: &start, End: &end})
	if err != nil {
		return stats.Overview{}, translateRepoError("list overview records", err)
	}
	ov, err := stats.PersonalOverview(records, p, now)
	if errors.Is(err, stats.ErrInvalidPeriod) {
		return stats.Overview{}, ErrInvalidPeriod
	}
	return ov, err
}
