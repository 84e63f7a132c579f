package stats

import (
	"sort"
	"time"

	"github.com/lababa/lababa/internal/record"
)

// RankingLimit 排行榜最多返回的条目数。
const RankingLimit = 50

// RankingEntry 单个用户在周期内的累计。
type RankingEntry struct {
	ID            string `json:"id"`
	TotalCount    int64  `json:"totalCount"`
	TotalDuration int64  `json:"totalDuration"`
}

// Rank 按 userId 分组累计周期内的记录，按次数降序排列（并列保持首次出现顺序），截取前 50。
func Rank(records []record.Record, p Period, now time.Time) []RankingEntry {
	index := make(map[string]int)
	entries := make([]RankingEntry, 0)
	for _, r := range records {
		if !InPeriod(r.Timestamp(), p, now) {
			continue
		}
		pos, ok := index[r.UserID]
		if !ok {
			pos = len(entries)
			index[r.UserID] = pos
			entries = append(entries, RankingEntry{ID: r.UserID})
		}
		entries[pos].TotalCount++
		entries[pos].TotalDuration += r.Duration
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalCount > entries[j].TotalCount
	})
	if len(entries) > RankingLimit {
		entries = entries[:RankingLimit]
	}
	return entries
}
