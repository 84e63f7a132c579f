package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/i18n"
)

// StatisticsHandler 汇总、月历与个人概览。
type StatisticsHandler struct {
	stats   service.StatisticsService
	ranking service.RankingService
	clock   stats.Clock
	i18n    *i18n.Manager
	logger  *slog.Logger
}

func NewStatisticsHandler(statsService service.StatisticsService, ranking service.RankingService, clock stats.Clock, i18nMgr *i18n.Manager, logger *slog.Logger) *StatisticsHandler {
	if clock == nil {
		clock = stats.SystemClock
	}
	return &StatisticsHandler{stats: statsService, ranking: ranking, clock: clock, i18n: i18nMgr, logger: logger}
}

// Summary GET|POST /api/statistics/summary
func (h *StatisticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query, err := parseRecordQuery(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "statistics.summary", err, h.i18n)
		return
	}
	summary, err := h.stats.Summary(ctx, query)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "statistics.summary", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"summary": summary}, h.i18n)
}

// MonthDays GET /api/statistics/month-days?year&month，缺省为当前年月。
func (h *StatisticsHandler) MonthDays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.clock()
	year := intOr(r.URL.Query().Get("year"), now.Year())
	month := intOr(r.URL.Query().Get("month"), int(now.Month()))
	report, err := h.stats.MonthDays(ctx, currentUser(r), year, month)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "statistics.month_days", err, h.i18n)
		return
	}
	respondOK(ctx, w, report, h.i18n)
}

// Overview GET /api/overview/personal?userId&period
func (h *StatisticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	ov, err := h.stats.Overview(ctx, userID, r.URL.Query().Get("period"))
	switch {
	case errors.Is(err, service.ErrMissingUserID):
		requestctx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_userId"})
		return
	case errors.Is(err, service.ErrInvalidPeriod):
		requestctx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_period"})
		return
	case err != nil:
		respondServiceError(ctx, w, h.logger, "overview.personal", err, h.i18n)
		return
	}
	respondOK(ctx, w, ov, h.i18n)
}

// Ranking GET|POST /api/ranking/list，period 可放在查询串或请求体里（请求体优先）。
func (h *StatisticsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := r.URL.Query().Get("period")
	if r.Method == http.MethodPost {
		var body struct {
			Period *string `json:"period"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondServiceError(ctx, w, h.logger, "ranking.list", err, h.i18n)
			return
		}
		if body.Period != nil {
			period = *body.Period
		}
	}
	list, err := h.ranking.List(ctx, period)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "ranking.list", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"list": list}, h.i18n)
}

func intOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}
