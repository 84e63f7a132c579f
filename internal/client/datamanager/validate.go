package datamanager

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lababa/lababa/internal/record"
)

// Validation 校验结果。
type Validation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

var requiredFields = []string{"id", "startTime", "endTime", "duration", "color", "status", "shape", "amount"}

// Validate 检查快照文档：必填字段、时长非负、开始不晚于结束、枚举取值合法。
// 数值为 0 或字符串为空的字段按缺失处理。
func Validate(data []byte) Validation {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return Validation{Errors: []string{"数据格式不正确"}}
	}
	var errs []string
	if raw, ok := doc["records"]; ok {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			errs = append(errs, "records 必须是数组")
		}
		for i, item := range items {
			errs = append(errs, validateItem(i+1, item)...)
		}
	}
	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

func validateItem(n int, item map[string]any) []string {
	var errs []string
	var missing []string
	for _, field := range requiredFields {
		if isFalsy(item[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("记录 %d 缺少字段: %s", n, strings.Join(missing, ", ")))
	}
	duration, _ := item["duration"].(float64)
	if duration < 0 {
		errs = append(errs, fmt.Sprintf("记录 %d 时长不能为负数", n))
	}
	start, _ := item["startTime"].(float64)
	end, _ := item["endTime"].(float64)
	if start > end {
		errs = append(errs, fmt.Sprintf("记录 %d 开始时间不能晚于结束时间", n))
	}
	if s, ok := item["color"].(string); ok && s != "" && !record.Color(s).Valid() {
		errs = append(errs, fmt.Sprintf("记录 %d 颜色无效: %s", n, s))
	}
	if s, ok := item["status"].(string); ok && s != "" && !record.Status(s).Valid() {
		errs = append(errs, fmt.Sprintf("记录 %d 状态无效: %s", n, s))
	}
	if s, ok := item["shape"].(string); ok && s != "" && !record.Shape(s).Valid() {
		errs = append(errs, fmt.Sprintf("记录 %d 形状无效: %s", n, s))
	}
	if s, ok := item["amount"].(string); ok && s != "" && !record.Amount(s).Valid() {
		errs = append(errs, fmt.Sprintf("记录 %d 分量无效: %s", n, s))
	}
	return errs
}

func isFalsy(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case float64:
		return value == 0
	case bool:
		return !value
	}
	return false
}
