package record

import (
	"fmt"
	"strings"
)

// Color 排泄物颜色。
type Color string

// Status 整体状态。
type Status string

// Shape 形状分类。
type Shape string

// Amount 分量。
type Amount string

const (
	ColorBrown     Color = "brown"
	ColorDarkBrown Color = "dark_brown"
	ColorYellow    Color = "yellow"
	ColorGreen     Color = "green"
	ColorBlack     Color = "black"
	ColorRed       Color = "red"

	StatusNormal       Status = "normal"
	StatusDiarrhea     Status = "diarrhea"
	StatusConstipation Status = "constipation"

	ShapeBanana  Shape = "banana"
	ShapeSausage Shape = "sausage"
	ShapeLumpy   Shape = "lumpy"
	ShapePellet  Shape = "pellet"
	ShapeMushy   Shape = "mushy"
	ShapeWatery  Shape = "watery"

	AmountSmall    Amount = "small"
	AmountModerate Amount = "moderate"
	AmountLarge    Amount = "large"
)

var (
	knownColors   = []Color{ColorBrown, ColorDarkBrown, ColorYellow, ColorGreen, ColorBlack, ColorRed}
	knownStatuses = []Status{StatusNormal, StatusDiarrhea, StatusConstipation}
	knownShapes   = []Shape{ShapeBanana, ShapeSausage, ShapeLumpy, ShapePellet, ShapeMushy, ShapeWatery}
	knownAmounts  = []Amount{AmountSmall, AmountModerate, AmountLarge}
)

// ParseColor 解析颜色，空值返回默认 brown。
func ParseColor(raw string) (Color, error) {
	return parseEnum(raw, ColorBrown, knownColors, ErrInvalidColor)
}

// ParseStatus 解析状态，空值返回默认 normal。
func ParseStatus(raw string) (Status, error) {
	return parseEnum(raw, StatusNormal, knownStatuses, ErrInvalidStatus)
}

// ParseShape 解析形状，空值返回默认 banana。
func ParseShape(raw string) (Shape, error) {
	return parseEnum(raw, ShapeBanana, knownShapes, ErrInvalidShape)
}

// ParseAmount 解析分量，空值返回默认 moderate。
func ParseAmount(raw string) (Amount, error) {
	return parseEnum(raw, AmountModerate, knownAmounts, ErrInvalidAmount)
}

// Statuses 返回全部状态枚举，顺序固定。
func Statuses() []Status {
	return append([]Status(nil), knownStatuses...)
}

func (c Color) Valid() bool  { return contains(knownColors, c) }
func (s Status) Valid() bool { return contains(knownStatuses, s) }
func (s Shape) Valid() bool  { return contains(knownShapes, s) }
func (a Amount) Valid() bool { return contains(knownAmounts, a) }

func parseEnum[T ~string](raw string, def T, known []T, sentinel error) (T, error) {
	value := T(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return def, nil
	}
	if !contains(known, value) {
		return "", fmt.Errorf("%w: %q", sentinel, raw)
	}
	return value, nil
}

func contains[T comparable](items []T, value T) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
