// 文件路径: internal/api/middleware/auth.go
// 模块说明: 登录守卫；Bearer 令牌经 JWT 与会话表双重校验后把用户写入上下文。
package middleware

import (
	"net/http"
	"strings"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// UserGuard ensures requests are authenticated end users; 否则返回 401 信封。
func UserGuard(auth service.AuthService, mgr *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(r, auth)
			if !ok {
				requestctx.WriteEnvelope(r.Context(), w, http.StatusUnauthorized, http.StatusUnauthorized, "unauthorized", nil, mgr)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithUserClaims(r.Context(), claims)))
		})
	}
}

// OptionalUser 令牌有效时写入用户，无效时按匿名请求放行。
func OptionalUser(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := authenticate(r, auth); ok {
				r = r.WithContext(requestctx.WithUserClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, auth service.AuthService) (requestctx.UserClaims, bool) {
	if auth == nil {
		return requestctx.UserClaims{}, false
	}
	token := extractBearer(r.Header.Get("Authorization"))
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Token"))
	}
	if token == "" {
		return requestctx.UserClaims{}, false
	}
	claims, err := auth.Verify(r.Context(), token)
	if err != nil {
		return requestctx.UserClaims{}, false
	}
	return requestctx.UserClaims{ID: claims.UserID, SessionID: claims.SessionID}, true
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
