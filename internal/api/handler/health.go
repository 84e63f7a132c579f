package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/support/i18n"
	"github.com/lababa/lababa/internal/support/sysinfo"
)

// HealthHandler 存活探针与运行状态。
type HealthHandler struct {
	monitor *sysinfo.Monitor
	dbPing  func(ctx context.Context) error
	i18n    *i18n.Manager
}

// NewHealthHandler dbPing 可为 nil。
func NewHealthHandler(monitor *sysinfo.Monitor, dbPing func(ctx context.Context) error, i18nMgr *i18n.Manager) *HealthHandler {
	if monitor == nil {
		monitor = sysinfo.New("")
	}
	return &HealthHandler{monitor: monitor, dbPing: dbPing, i18n: i18nMgr}
}

// Ping GET /api/health/ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	respondOK(r.Context(), w, map[string]string{"status": "ok"}, h.i18n)
}

// Status GET /api/health/status；数据库不可达时返回 503。
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := "ok"
	code := http.StatusOK
	if h.dbPing != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.dbPing(pingCtx)
		cancel()
		if err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	payload := map[string]any{
		"status": status,
		"system": h.monitor.Collect(),
	}
	if code != http.StatusOK {
		requestctx.WriteEnvelope(ctx, w, code, code, "server_error", payload, h.i18n)
		return
	}
	respondOK(ctx, w, payload, h.i18n)
}
