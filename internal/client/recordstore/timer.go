package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/record"
)

// ErrNotRecording StopRecording 时没有进行中的计时。
var ErrNotRecording = errors.New("no recording in progress / 当前没有进行中的计时")

// Recording 进行中的计时，保存在 current-record 键下，进程重启后可恢复。
type Recording struct {
	StartTime int64 `json:"startTime"`
}

// StartRecording 开始计时；已有计时时重新开始。
func (s *Store) StartRecording(ctx context.Context) Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Recording{StartTime: s.clock().UnixMilli()}
	s.recording = &rec
	if !s.cache.Set(ctx, localcache.KeyCurrentRecord, rec) {
		s.logger.Warn("persist current recording failed")
	}
	return rec
}

// CurrentRecording 返回进行中的计时。
func (s *Store) CurrentRecording() (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording == nil {
		return Recording{}, false
	}
	return *s.recording, true
}

// Elapsed 进行中计时已经过的整秒数，没有计时为 0。
func (s *Store) Elapsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording == nil {
		return 0
	}
	return elapsedSeconds(s.recording.StartTime, s.clock().UnixMilli())
}

// StopRecording 结束计时并据此创建记录，时长取整秒；draft 中的时间字段会被覆盖。
func (s *Store) StopRecording(ctx context.Context, d record.Draft) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording == nil {
		return record.Record{}, ErrNotRecording
	}
	start := s.recording.StartTime
	duration := elapsedSeconds(start, s.clock().UnixMilli())
	d.StartTime, d.EndTime, d.Duration = &start, nil, &duration

	rec, err := s.create(ctx, d)
	if err != nil && !errors.Is(err, localcache.ErrStorage) {
		return record.Record{}, err
	}
	s.recording = nil
	if !s.cache.Remove(ctx, localcache.KeyCurrentRecord) {
		s.logger.Warn("clear current recording failed")
	}
	return rec, err
}

// CancelRecording 丢弃进行中的计时。
func (s *Store) CancelRecording(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = nil
	s.cache.Remove(ctx, localcache.KeyCurrentRecord)
}

// AddRecordForDate 补录某天的记录：date 形如 2006-01-02，clock 形如 15:04（为空时取 12:00），
// 以该时刻为结束时间，时长按分钟计且至少 1 分钟。
func (s *Store) AddRecordForDate(ctx context.Context, date, clock string, durationMinutes int, d record.Draft) (record.Record, error) {
	end, err := parseLocal(date, clock, s.clock().Location())
	if err != nil {
		return record.Record{}, err
	}
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	endMs := end.UnixMilli()
	duration := int64(durationMinutes) * 60
	start := endMs - duration*1000
	d.StartTime, d.EndTime, d.Duration = &start, &endMs, &duration
	return s.Create(ctx, d)
}

func (s *Store) restoreRecording(ctx context.Context) {
	var rec Recording
	if s.cache.Get(ctx, localcache.KeyCurrentRecord, &rec) && rec.StartTime > 0 {
		s.recording = &rec
	}
}

func elapsedSeconds(start, now int64) int64 {
	if now <= start {
		return 0
	}
	return (now - start) / 1000
}

func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q / 日期格式应为 YYYY-MM-DD: %w", date, err)
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "12:00"
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time %q / 时间格式应为 HH:MM", clock)
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q / 时间格式应为 HH:MM", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
