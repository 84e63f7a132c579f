package record

import "errors"

var (
	// ErrInvalidColor 表示颜色不在已知枚举内。
	ErrInvalidColor = errors.New("record: invalid color / 颜色无效")
	// ErrInvalidStatus 表示状态不在已知枚举内。
	ErrInvalidStatus = errors.New("record: invalid status / 状态无效")
	// ErrInvalidShape 表示形状不在已知枚举内。
	ErrInvalidShape = errors.New("record: invalid shape / 形状无效")
	// ErrInvalidAmount 表示分量不在已知枚举内。
	ErrInvalidAmount = errors.New("record: invalid amount / 分量无效")
	// ErrInvalidTimeRange 表示开始时间晚于结束时间或时长为负。
	ErrInvalidTimeRange = errors.New("record: invalid time range / 时间范围无效")
)

// IsValidation reports whether err came from boundary validation of a record payload.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidColor) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidShape) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidTimeRange)
}
