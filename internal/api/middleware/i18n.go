package middleware

import (
	"net/http"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/support/i18n"
)

// I18n 依次读取 ?lang、X-I18N-Lang 与 Accept-Language，匹配到已加载的语言后写入上下文。
func I18n(manager *i18n.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.DefaultLang
			if manager != nil {
				lang = manager.Match(
					r.URL.Query().Get("lang"),
					r.Header.Get("X-I18N-Lang"),
					r.Header.Get("Accept-Language"),
				)
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithLanguage(r.Context(), lang)))
		})
	}
}
