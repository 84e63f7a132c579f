package stats

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lababa/lababa/internal/record"
)

// 2024-05-22 是星期三。
var now = time.Date(2024, 5, 22, 15, 0, 0, 0, time.UTC)

func rec(user string, end time.Time, duration int64) record.Record {
	return record.Record{
		ID:        record.NewID(),
		UserID:    user,
		StartTime: end.UnixMilli() - duration*1000,
		EndTime:   end.UnixMilli(),
		Duration:  duration,
		Color:     record.ColorBrown,
		Status:    record.StatusNormal,
		Shape:     record.ShapeBanana,
		Amount:    record.AmountModerate,
	}
}

func i64(v int64) *int64 { return &v }

func TestFilterBounds(t *testing.T) {
	base := now.Add(-time.Hour)
	records := []record.Record{
		rec("a", base, 10),
		rec("b", base, 10),
		rec("a", base.Add(time.Minute), 10),
	}

	all := Apply(records, Filter{})
	assert.Len(t, all, 3)

	onlyA := Apply(records, Filter{UserID: "a"})
	assert.Len(t, onlyA, 2)

	startInclusive := Apply(records, Filter{Start: i64(base.UnixMilli())})
	assert.Len(t, startInclusive, 3)

	endExclusive := Apply(records, Filter{End: i64(base.UnixMilli())})
	assert.Empty(t, endExclusive)

	window := Apply(records, Filter{UserID: "a", Start: i64(base.UnixMilli() + 1), End: i64(base.Add(time.Hour).UnixMilli())})
	require.Len(t, window, 1)
	assert.Equal(t, records[2].ID, window[0].ID)
}

func TestPage(t *testing.T) {
	records := []record.Record{rec("a", now, 1), rec("a", now, 2), rec("a", now, 3)}
	assert.Len(t, Page(records, 0, 2), 2)
	assert.Len(t, Page(records, 2, 10), 1)
	assert.Empty(t, Page(records, 5, 10))
	assert.Empty(t, Page(records, 0, 0))
	assert.Len(t, Page(records, 0, math.MaxInt), 3)
	assert.Len(t, Page(records, 1, math.MaxInt), 2)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize(t *testing.T) {
	records := []record.Record{rec("a", now, 10), rec("a", now, 20), rec("b", now, 30)}
	s := Summarize(records)
	assert.Equal(t, int64(3), s.TotalRecords)
	assert.Equal(t, int64(60), s.TotalDuration)
	assert.Equal(t, int64(20), s.AverageDuration)
	assert.Equal(t, int64(30), s.LongestDuration)
}

func TestSummarizeFloorsAverage(t *testing.T) {
	s := Summarize([]record.Record{rec("a", now, 10), rec("a", now, 11)})
	assert.Equal(t, int64(10), s.AverageDuration)
	assert.Equal(t, s, SummaryFromTotals(2, 21, 11))
}

func TestInPeriodDay(t *testing.T) {
	assert.True(t, InPeriod(now.UnixMilli(), PeriodDay, now))
	assert.True(t, InPeriod(time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC).UnixMilli(), PeriodDay, now))
	assert.False(t, InPeriod(time.Date(2024, 5, 21, 23, 59, 59, 0, time.UTC).UnixMilli(), PeriodDay, now))
	assert.False(t, InPeriod(time.Date(2024, 5, 23, 0, 0, 0, 0, time.UTC).UnixMilli(), PeriodDay, now))
}

func TestInPeriodWeekStartsMonday(t *testing.T) {
	monday := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	assert.True(t, InPeriod(monday.UnixMilli(), PeriodWeek, now))
	assert.False(t, InPeriod(monday.Add(-time.Millisecond).UnixMilli(), PeriodWeek, now))
	assert.True(t, InPeriod(monday.AddDate(0, 0, 7).Add(-time.Millisecond).UnixMilli(), PeriodWeek, now))
	assert.False(t, InPeriod(monday.AddDate(0, 0, 7).UnixMilli(), PeriodWeek, now))

	sunday := time.Date(2024, 5, 26, 22, 0, 0, 0, time.UTC)
	assert.True(t, InPeriod(monday.UnixMilli(), PeriodWeek, sunday))
}

func TestInPeriodMonthAndTotal(t *testing.T) {
	assert.True(t, InPeriod(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), PeriodMonth, now))
	assert.False(t, InPeriod(time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC).UnixMilli(), PeriodMonth, now))
	assert.True(t, InPeriod(0, PeriodTotal, now))
	assert.True(t, InPeriod(0, ParsePeriod("fortnight"), now))
	assert.Equal(t, PeriodTotal, ParsePeriod(""))
}

func TestRankOrdersByCount(t *testing.T) {
	var records []record.Record
	for i := 0; i < 3; i++ {
		records = append(records, rec("A", now, 10))
	}
	for i := 0; i < 5; i++ {
		records = append(records, rec("B", now, 20))
	}
	list := Rank(records, PeriodTotal, now)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, int64(5), list[0].TotalCount)
	assert.Equal(t, int64(100), list[0].TotalDuration)
	assert.Equal(t, "A", list[1].ID)
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	records := []record.Record{rec("x", now, 1), rec("y", now, 1), rec("z", now, 1), rec("y", now, 1), rec("x", now, 1)}
	list := Rank(records, PeriodTotal, now)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestRankCapsAtFifty(t *testing.T) {
	records := make([]record.Record, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, rec(fmt.Sprintf("user-%d", i), now, 1))
	}
	assert.Len(t, Rank(records, PeriodTotal, now), RankingLimit)
}

func TestRankHonoursPeriod(t *testing.T) {
	records := []record.Record{rec("today", now, 1), rec("old", now.AddDate(0, 0, -3), 1)}
	list := Rank(records, PeriodDay, now)
	require.Len(t, list, 1)
	assert.Equal(t, "today", list[0].ID)

	fallback := rec("created", now, 1)
	fallback.EndTime = 0
	fallback.CreatedAt = now.UnixMilli()
	list = Rank([]record.Record{fallback}, PeriodDay, now)
	require.Len(t, list, 1)
}

func TestMonthDays(t *testing.T) {
	diarrhea := rec("a", time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC), 60)
	diarrhea.Status = record.StatusDiarrhea
	records := []record.Record{
		rec("a", time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC), 60),
		diarrhea,
		rec("a", time.Date(2024, 5, 3, 20, 0, 0, 0, time.UTC), 60),
		rec("a", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 60),
	}
	report := MonthDays(records, 2024, 5, time.UTC)
	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 2, report.TotalDays)
	require.Len(t, report.Days, 2)
	assert.Equal(t, DayCount{Date: "2024-05-03", Normal: 1, Diarrhea: 1, Total: 2}, report.Days[0])
	assert.Equal(t, "2024-05-10", report.Days[1].Date)

	clamped := MonthDays(nil, 2024, 13, time.UTC)
	assert.Equal(t, 12, clamped.Month)
	assert.NotNil(t, clamped.Days)
}

func TestPersonalOverview(t *testing.T) {
	green := rec("a", now.Add(-time.Hour), 30)
	green.Color = record.ColorGreen
	green.Status = record.StatusConstipation
	records := []record.Record{
		rec("a", now, 30),
		rec("a", now.AddDate(0, 0, -1), 30),
		green,
		rec("a", now.AddDate(0, 0, -10), 30),
	}
	ov, err := PersonalOverview(records, "", now)
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, ov.Period)
	assert.Equal(t, 3, ov.Count)
	assert.Equal(t, 2, ov.CheckInDays)
	assert.Equal(t, map[string]int{"brown": 2, "green": 1}, ov.Colors)
	assert.Equal(t, 66, ov.Score)

	_, err = PersonalOverview(records, "decade", now)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
