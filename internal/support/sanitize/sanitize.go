// Package sanitize 清理用户输入的纯文本字段（备注、昵称）。
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxTextLength 单个文本字段保留的最大字符数。
const MaxTextLength = 500

var textPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

// Text 去掉全部 HTML 标签并还原实体，截断到 MaxTextLength 个字符。
func Text(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	cleaned := html.UnescapeString(textPolicy().Sanitize(trimmed))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if utf8.RuneCountInString(cleaned) > MaxTextLength {
		cleaned = string([]rune(cleaned)[:MaxTextLength])
	}
	return cleaned
}
