package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// respondOK 业务成功：{code:0, msg:"成功", data}。
func respondOK(ctx context.Context, w http.ResponseWriter, data any, mgr *i18n.Manager) {
	requestctx.WriteEnvelope(ctx, w, http.StatusOK, 0, "success", data, mgr)
}

// respondNotFound 资源不存在时不走信封，直接返回 {error:"not_found"}。
func respondNotFound(w http.ResponseWriter) {
	requestctx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

func respondEnvelopeError(ctx context.Context, w http.ResponseWriter, status int, key string, mgr *i18n.Manager) {
	requestctx.WriteEnvelope(ctx, w, status, status, key, nil, mgr)
}

// respondServiceError 把服务层错误映射为 HTTP 状态。
func respondServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, action string, err error, mgr *i18n.Manager) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondNotFound(w)
	case errors.Is(err, service.ErrUnauthorized):
		respondEnvelopeError(ctx, w, http.StatusUnauthorized, "unauthorized", mgr)
	case errors.Is(err, service.ErrForbidden):
		respondEnvelopeError(ctx, w, http.StatusForbidden, "forbidden", mgr)
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrSelfInvite),
		record.IsValidation(err):
		requestctx.WriteEnvelope(ctx, w, http.StatusBadRequest, http.StatusBadRequest, "bad_request", map[string]string{"error": err.Error()}, mgr)
	default:
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "request failed", "action", action, "error", err)
		respondEnvelopeError(ctx, w, http.StatusInternalServerError, "server_error", mgr)
	}
}

// decodeBody 解析 JSON 请求体；空请求体视为 {}。
func decodeBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Join(service.ErrInvalidArgument, err)
	}
	return nil
}

func currentUser(r *http.Request) string {
	return requestctx.UserFromContext(r.Context()).ID
}
