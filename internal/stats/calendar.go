package stats

import (
	"errors"
	"sort"
	"time"

	"github.com/lababa/lababa/internal/record"
)

// ErrInvalidPeriod 概览只支持 day/week/month/year。
var ErrInvalidPeriod = errors.New("stats: invalid period / 周期无效")

// DayCount 某一天按状态拆分的次数。
type DayCount struct {
	Date         string `json:"date"`
	Normal       int    `json:"normal"`
	Diarrhea     int    `json:"diarrhea"`
	Constipation int    `json:"constipation"`
	Total        int    `json:"total"`
}

// MonthReport 月历视图。
type MonthReport struct {
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	Days         []DayCount `json:"days"`
	TotalDays    int        `json:"totalDays"`
	TotalRecords int        `json:"totalRecords"`
}

// MonthBounds 返回某月在 loc 时区下的 [start, end) 毫秒边界，month 会被夹到 1..12。
func MonthBounds(year, month int, loc *time.Location) (int64, int64, int) {
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return first.UnixMilli(), first.AddDate(0, 1, 0).UnixMilli(), month
}

// MonthDays 统计某月每天的状态分布，日期按 endTime 在 loc 时区归档，结果按日期升序。
func MonthDays(records []record.Record, year, month int, loc *time.Location) MonthReport {
	start, end, month := MonthBounds(year, month, loc)
	report := MonthReport{Year: year, Month: month, Days: []DayCount{}}
	byDay := make(map[string]*DayCount)
	for _, r := range records {
		if r.EndTime < start || r.EndTime >= end {
			continue
		}
		day := time.UnixMilli(r.EndTime).In(loc).Format(time.DateOnly)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DayCount{Date: day}
			byDay[day] = bucket
		}
		switch r.Status {
		case record.StatusNormal:
			bucket.Normal++
		case record.StatusDiarrhea:
			bucket.Diarrhea++
		case record.StatusConstipation:
			bucket.Constipation++
		}
		bucket.Total = bucket.Normal + bucket.Diarrhea + bucket.Constipation
		report.TotalRecords++
	}
	for _, bucket := range byDay {
		report.Days = append(report.Days, *bucket)
	}
	sort.Slice(report.Days, func(i, j int) bool { return report.Days[i].Date < report.Days[j].Date })
	report.TotalDays = len(report.Days)
	return report
}

// Overview 个人周期概览。
type Overview struct {
	Period      Period         `json:"period"`
	CheckInDays int            `json:"checkInDays"`
	Count       int            `json:"count"`
	Colors      map[string]int `json:"colors"`
	Score       int            `json:"score"`
}

// PersonalOverview 计算周期内打卡天数、次数、颜色分布与状态评分（正常占比 * 100，向下取整）。
// 空周期默认 week；records 需已按用户过滤。
func PersonalOverview(records []record.Record, p Period, now time.Time) (Overview, error) {
	if p == "" {
		p = PeriodWeek
	}
	if p == PeriodTotal {
		return Overview{}, ErrInvalidPeriod
	}
	start, end, bounded := Window(p, now)
	if !bounded {
		return Overview{}, ErrInvalidPeriod
	}
	ov := Overview{Period: p, Colors: map[string]int{}}
	days := make(map[string]struct{})
	normal := 0
	for _, r := range records {
		if r.EndTime < start || r.EndTime >= end {
			continue
		}
		days[time.UnixMilli(r.EndTime).In(now.Location()).Format(time.DateOnly)] = struct{}{}
		ov.Colors[string(r.Color)]++
		ov.Count++
		if r.Status == record.StatusNormal {
			normal++
		}
	}
	ov.CheckInDays = len(days)
	if ov.Count > 0 {
		ov.Score = normal * 100 / ov.Count
	}
	return ov, nil
}
