// 文件路径: internal/api/requestctx/user.go
// 模块说明: 请求上下文里的登录用户与语言标识。
package requestctx

import (
	"context"

	"github.com/lababa/lababa/internal/support/i18n"
)

// UserClaims stores minimal auth info derived from the user guard.
type UserClaims struct {
	ID        string
	SessionID string
}

type contextKey string

const userContextKey contextKey = "lababa-user"

// I18nKey 用于在 context 中存储语言标识的 key 类型。
type I18nKey struct{}

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, I18nKey{}, lang)
}

// GetLanguage 从 context 中获取语言标识，未设置时返回 i18n.DefaultLang。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return i18n.DefaultLang
	}
	if lang, ok := ctx.Value(I18nKey{}).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLang
}

// WithUserClaims attaches user data to the context for downstream handlers.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// UserFromContext fetches user claims, returning zero value if missing.
func UserFromContext(ctx context.Context) UserClaims {
	if ctx == nil {
		return UserClaims{}
	}
	claims, _ := ctx.Value(userContextKey).(UserClaims)
	return claims
}
