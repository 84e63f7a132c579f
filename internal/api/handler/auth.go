package handler

import (
	"log/slog"
	"net/http"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// AuthHandler 小程序登录。
type AuthHandler struct {
	auth   service.AuthService
	i18n   *i18n.Manager
	logger *slog.Logger
}

func NewAuthHandler(auth service.AuthService, i18nMgr *i18n.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, i18n: i18nMgr, logger: logger}
}

// Weapp POST /api/auth/weapp；令牌同时放在 Authorization 与 X-Token 响应头里。
func (h *AuthHandler) Weapp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input service.WeappLoginInput
	if err := decodeBody(r, &input); err != nil {
		respondServiceError(ctx, w, h.logger, "auth.weapp", err, h.i18n)
		return
	}
	result, err := h.auth.WeappLogin(ctx, input)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "auth.weapp", err, h.i18n)
		return
	}
	w.Header().Set("Authorization", "Bearer "+result.Token)
	w.Header().Set("X-Token", result.Token)
	respondOK(ctx, w, result, h.i18n)
}

// Logout POST /api/auth/logout，删除当前会话；令牌随之失效。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if err := h.auth.Logout(ctx, claims.SessionID); err != nil {
		respondServiceError(ctx, w, h.logger, "auth.logout", err, h.i18n)
		return
	}
	respondOK(ctx, w, nil, h.i18n)
}
