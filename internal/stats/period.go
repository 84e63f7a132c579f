package stats

import (
	"strings"
	"time"
)

// Period 排行与概览使用的时间分桶策略。
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodTotal Period = "total"
)

// Clock 返回当前时间，测试中注入固定值。
type Clock func() time.Time

// SystemClock 使用本地墙钟时间。
func SystemClock() time.Time { return time.Now() }

// ParsePeriod 规范化周期字符串；空值视为 total，未知值原样保留（判定时恒为真）。
func ParsePeriod(raw string) Period {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return PeriodTotal
	}
	return p
}

// InPeriod 判断毫秒时间戳是否落在 now 所在的周期内，日历计算使用 now 的时区。
func InPeriod(ts int64, p Period, now time.Time) bool {
	start, end, bounded := Window(p, now)
	if !bounded {
		return true
	}
	return ts >= start && ts < end
}

// Window 返回周期的 [start, end) 毫秒边界；total 与未知周期返回 bounded=false。
// week 从本周一 00:00 开始，共 7 天。
func Window(p Period, now time.Time) (start, end int64, bounded bool) {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch p {
	case PeriodDay:
		return midnight.UnixMilli(), midnight.AddDate(0, 0, 1).UnixMilli(), true
	case PeriodWeek:
		back := (int(now.Weekday()) + 6) % 7
		first := time.Date(now.Year(), now.Month(), now.Day()-back, 0, 0, 0, 0, loc)
		return first.UnixMilli(), first.AddDate(0, 0, 7).UnixMilli(), true
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return first.UnixMilli(), first.AddDate(0, 1, 0).UnixMilli(), true
	case PeriodYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return first.UnixMilli(), first.AddDate(1, 0, 0).UnixMilli(), true
	default:
		return 0, 0, false
	}
}
