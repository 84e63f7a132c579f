package record

import (
	"fmt"
	"strings"
)

// Patch 更新记录时的部分字段。id 与 userId 不在其中，合并时永远保留原值。
type Patch struct {
	StartTime   *int64  `json:"startTime,omitempty"`
	EndTime     *int64  `json:"endTime,omitempty"`
	Duration    *int64  `json:"duration,omitempty"`
	Color       *string `json:"color,omitempty"`
	Status      *string `json:"status,omitempty"`
	Shape       *string `json:"shape,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Note        *string `json:"note,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// Empty 判断补丁是否没有任何字段。
func (p Patch) Empty() bool {
	return p.StartTime == nil && p.EndTime == nil && p.Duration == nil &&
		p.Color == nil && p.Status == nil && p.Shape == nil && p.Amount == nil &&
		p.Note == nil && p.IsCompleted == nil
}

// Merge 将补丁覆盖到现有记录上，返回新记录；原记录不被修改。
// 时间字段被改动时重新推导，保证 duration 与起止时间一致。
func Merge(existing Record, p Patch) (Record, error) {
	merged := existing
	if p.Color != nil {
		c, err := parseSupplied(*p.Color, ParseColor, ErrInvalidColor)
		if err != nil {
			return Record{}, err
		}
		merged.Color = c
	}
	if p.Status != nil {
		s, err := parseSupplied(*p.Status, ParseStatus, ErrInvalidStatus)
		if err != nil {
			return Record{}, err
		}
		merged.Status = s
	}
	if p.Shape != nil {
		s, err := parseSupplied(*p.Shape, ParseShape, ErrInvalidShape)
		if err != nil {
			return Record{}, err
		}
		merged.Shape = s
	}
	if p.Amount != nil {
		a, err := parseSupplied(*p.Amount, ParseAmount, ErrInvalidAmount)
		if err != nil {
			return Record{}, err
		}
		merged.Amount = a
	}
	if p.Note != nil {
		merged.Note = *p.Note
	}
	if p.IsCompleted != nil {
		merged.IsCompleted = *p.IsCompleted
	}

	switch {
	case p.StartTime != nil || p.EndTime != nil:
		if p.StartTime != nil {
			merged.StartTime = *p.StartTime
		}
		if p.EndTime != nil {
			merged.EndTime = *p.EndTime
		}
		if merged.StartTime > merged.EndTime {
			return Record{}, fmt.Errorf("%w: start %d after end %d", ErrInvalidTimeRange, merged.StartTime, merged.EndTime)
		}
		merged.Duration = DurationBetween(merged.StartTime, merged.EndTime)
	case p.Duration != nil:
		if *p.Duration < 0 {
			return Record{}, fmt.Errorf("%w: negative duration", ErrInvalidTimeRange)
		}
		merged.Duration = *p.Duration
		merged.StartTime = merged.EndTime - merged.Duration*1000
	}

	merged.ID = existing.ID
	merged.UserID = existing.UserID
	return merged, nil
}

// parseSupplied 显式提供的空字符串不是"缺省"，需要拒绝。
func parseSupplied[T ~string](raw string, parse func(string) (T, error), sentinel error) (T, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty value", sentinel)
	}
	return parse(raw)
}
