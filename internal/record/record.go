// Package record 定义排便记录的领域模型以及创建、合并时的时间字段推导规则。
package record

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultWindow 未提供任何时间字段时假定的记录窗口（5 分钟）。
	DefaultWindow = 5 * time.Minute
	// DefaultUserID 无法解析归属用户时使用的占位用户。
	DefaultUserID = "default-user"
)

// Record 一次带时长的记录，时间字段均为毫秒时间戳，时长为秒。
type Record struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	Duration    int64  `json:"duration"`
	Color       Color  `json:"color"`
	Status      Status `json:"status"`
	Shape       Shape  `json:"shape"`
	Amount      Amount `json:"amount"`
	Note        string `json:"note"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   int64  `json:"createdAt"`
}

// User 身份信息，按 id 或 openId upsert。
type User struct {
	ID        string `json:"id"`
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
	OpenID    string `json:"openId"`
}

// Draft 创建记录时的输入，指针字段为 nil 表示调用方未提供。
type Draft struct {
	UserID      string `json:"userId,omitempty"`
	StartTime   *int64 `json:"startTime,omitempty"`
	EndTime     *int64 `json:"endTime,omitempty"`
	Duration    *int64 `json:"duration,omitempty"`
	Color       string `json:"color,omitempty"`
	Status      string `json:"status,omitempty"`
	Shape       string `json:"shape,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Note        string `json:"note,omitempty"`
	IsCompleted *bool  `json:"isCompleted,omitempty"`
}

// NewID 生成记录、用户等实体的唯一标识。
func NewID() string {
	return uuid.NewString()
}

// Build 根据 Draft 生成完整记录：校验枚举、推导时间字段并填充默认值。
// userID 为空时回退到 DefaultUserID。
func Build(d Draft, userID string, now time.Time) (Record, error) {
	owner := strings.TrimSpace(userID)
	if owner == "" {
		owner = DefaultUserID
	}
	tags, err := parseTags(d.Color, d.Status, d.Shape, d.Amount)
	if err != nil {
		return Record{}, err
	}
	start, end, duration, err := Derive(d.StartTime, d.EndTime, d.Duration, now)
	if err != nil {
		return Record{}, err
	}
	completed := true
	if d.IsCompleted != nil {
		completed = *d.IsCompleted
	}
	return Record{
		ID:          NewID(),
		UserID:      owner,
		StartTime:   start,
		EndTime:     end,
		Duration:    duration,
		Color:       tags.color,
		Status:      tags.status,
		Shape:       tags.shape,
		Amount:      tags.amount,
		Note:        d.Note,
		IsCompleted: completed,
		CreatedAt:   now.UnixMilli(),
	}, nil
}

// Derive 推导 startTime/endTime/duration 三元组。
//
//   - start 与 end 都给出时，duration 始终由两者计算（四舍五入到秒）；
//   - 仅 end + duration 时，start = end - duration*1000；
//   - 仅 start + duration 时，end = start + duration*1000；
//   - 只给 duration 时以 now 为结束时间；
//   - 只给 start 时以 now 为结束时间；
//   - 只给 end 或全部缺省时，使用以 end（或 now）结尾的 5 分钟默认窗口。
func Derive(start, end, duration *int64, now time.Time) (int64, int64, int64, error) {
	nowMs := now.UnixMilli()
	if duration != nil && *duration < 0 {
		return 0, 0, 0, fmt.Errorf("%w: negative duration", ErrInvalidTimeRange)
	}
	switch {
	case start != nil && end != nil:
		return fromBounds(*start, *end)
	case start != nil && duration != nil:
		return *start, *start + *duration*1000, *duration, nil
	case end != nil && duration != nil:
		return *end - *duration*1000, *end, *duration, nil
	case start != nil:
		return fromBounds(*start, nowMs)
	case duration != nil:
		return nowMs - *duration*1000, nowMs, *duration, nil
	case end != nil:
		return fromBounds(*end-DefaultWindow.Milliseconds(), *end)
	default:
		return fromBounds(nowMs-DefaultWindow.Milliseconds(), nowMs)
	}
}

// DurationBetween 返回两个毫秒时间戳之间的秒数（四舍五入）。
func DurationBetween(start, end int64) int64 {
	return int64(math.Round(float64(end-start) / 1000))
}

func fromBounds(start, end int64) (int64, int64, int64, error) {
	if start > end {
		return 0, 0, 0, fmt.Errorf("%w: start %d after end %d", ErrInvalidTimeRange, start, end)
	}
	return start, end, DurationBetween(start, end), nil
}

type tagSet struct {
	color  Color
	status Status
	shape  Shape
	amount Amount
}

func parseTags(color, status, shape, amount string) (tagSet, error) {
	var (
		set tagSet
		err error
	)
	if set.color, err = ParseColor(color); err != nil {
		return tagSet{}, err
	}
	if set.status, err = ParseStatus(status); err != nil {
		return tagSet{}, err
	}
	if set.shape, err = ParseShape(shape); err != nil {
		return tagSet{}, err
	}
	if set.amount, err = ParseAmount(amount); err != nil {
		return tagSet{}, err
	}
	return set, nil
}

// Validate 检查已存在记录（例如从缓存或备份导入）的完整性。
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record: id is required / 缺少 id")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("record %s: userId is required / 缺少 userId", r.ID)
	}
	if r.StartTime <= 0 || r.EndTime <= 0 {
		return fmt.Errorf("record %s: startTime and endTime are required / 缺少时间字段", r.ID)
	}
	if r.Duration < 0 || r.StartTime > r.EndTime {
		return fmt.Errorf("record %s: %w", r.ID, ErrInvalidTimeRange)
	}
	if !r.Color.Valid() {
		return fmt.Errorf("record %s: %w: %q", r.ID, ErrInvalidColor, r.Color)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("record %s: %w: %q", r.ID, ErrInvalidStatus, r.Status)
	}
	if !r.Shape.Valid() {
		return fmt.Errorf("record %s: %w: %q", r.ID, ErrInvalidShape, r.Shape)
	}
	if !r.Amount.Valid() {
		return fmt.Errorf("record %s: %w: %q", r.ID, ErrInvalidAmount, r.Amount)
	}
	return nil
}

// Timestamp 返回排行统计使用的时间点：优先 endTime，其次 createdAt。
func (r Record) Timestamp() int64 {
	if r.EndTime != 0 {
		return r.EndTime
	}
	return r.CreatedAt
}
