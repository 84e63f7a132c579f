package stats

import "github.com/lababa/lababa/internal/record"

// Summary 汇总统计，时长单位为秒。
type Summary struct {
	TotalRecords    int64 `json:"totalRecords"`
	TotalDuration   int64 `json:"totalDuration"`
	AverageDuration int64 `json:"averageDuration"`
	LongestDuration int64 `json:"longestDuration"`
}

// Summarize 计算数量、总时长、平均时长（向下取整）与最长时长；空集合全部为 0。
func Summarize(records []record.Record) Summary {
	var s Summary
	for _, r := range records {
		s.TotalRecords++
		s.TotalDuration += r.Duration
		if r.Duration > s.LongestDuration {
			s.LongestDuration = r.Duration
		}
	}
	if s.TotalRecords > 0 {
		s.AverageDuration = floorDiv(s.TotalDuration, s.TotalRecords)
	}
	return s
}

// SummaryFromTotals 由数据库聚合结果构造 Summary，规则与 Summarize 一致。
func SummaryFromTotals(count, total, longest int64) Summary {
	s := Summary{TotalRecords: count, TotalDuration: total, LongestDuration: longest}
	if count > 0 {
		s.AverageDuration = floorDiv(total, count)
	}
	return s
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
