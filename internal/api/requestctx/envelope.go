package requestctx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lababa/lababa/internal/support/i18n"
)

// Envelope 统一响应包装：code 为 0 表示业务成功。
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// WriteJSON 写出任意 JSON 响应。
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

// WriteEnvelope 按请求语言翻译 msgKey 后写出信封；mgr 为 nil 时 msg 即 key。
func WriteEnvelope(ctx context.Context, w http.ResponseWriter, status, code int, msgKey string, data any, mgr *i18n.Manager) {
	msg := msgKey
	if mgr != nil {
		msg = mgr.Translate(GetLanguage(ctx), msgKey)
	}
	WriteJSON(w, status, Envelope{Code: code, Msg: msg, Data: data})
}
