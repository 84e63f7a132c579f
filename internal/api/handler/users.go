package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// UserHandler 用户资料。
type UserHandler struct {
	users  service.UserService
	i18n   *i18n.Manager
	logger *slog.Logger
}

func NewUserHandler(users service.UserService, i18nMgr *i18n.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, i18n: i18nMgr, logger: logger}
}

// Detail GET /api/users/detail/{id}（公开）
func (h *UserHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(ctx, w, h.logger, "users.detail", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"user": user}, h.i18n)
}

// Update PUT /api/users/update/{id}，只能修改自己。
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input service.UserUpdate
	if err := decodeBody(r, &input); err != nil {
		respondServiceError(ctx, w, h.logger, "users.update", err, h.i18n)
		return
	}
	user, err := h.users.Update(ctx, currentUser(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "users.update", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"user": user}, h.i18n)
}
