// 文件路径: internal/api/handler/records.go
// 模块说明: /api/records/* 与 /api/index/list。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// RecordHandler 记录增删改查。
type RecordHandler struct {
	records service.RecordService
	stats   service.StatisticsService
	i18n    *i18n.Manager
	logger  *slog.Logger
}

func NewRecordHandler(records service.RecordService, stats service.StatisticsService, i18nMgr *i18n.Manager, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: records, stats: stats, i18n: i18nMgr, logger: logger}
}

// List GET|POST /api/records/list
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query, err := parseRecordQuery(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.list", err, h.i18n)
		return
	}
	page, err := h.records.List(ctx, query)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.list", err, h.i18n)
		return
	}
	respondOK(ctx, w, page, h.i18n)
}

// Index GET|POST /api/index/list
func (h *RecordHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query, err := parseRecordQuery(r)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "index.list", err, h.i18n)
		return
	}
	page, err := h.stats.Index(ctx, query)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "index.list", err, h.i18n)
		return
	}
	respondOK(ctx, w, page, h.i18n)
}

// Create POST /api/records/create
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft record.Draft
	if err := decodeBody(r, &draft); err != nil {
		respondServiceError(ctx, w, h.logger, "records.create", err, h.i18n)
		return
	}
	rec, err := h.records.Create(ctx, currentUser(r), draft)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.create", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"record": rec}, h.i18n)
}

// Detail GET /api/records/detail/{id}
func (h *RecordHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := h.records.Detail(ctx, currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.detail", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"record": rec}, h.i18n)
}

// Update PUT /api/records/update/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch record.Patch
	if err := decodeBody(r, &patch); err != nil {
		respondServiceError(ctx, w, h.logger, "records.update", err, h.i18n)
		return
	}
	rec, err := h.records.Update(ctx, currentUser(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.update", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"record": rec}, h.i18n)
}

// Delete DELETE /api/records/delete/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := h.records.Delete(ctx, currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(ctx, w, h.logger, "records.delete", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"record": rec}, h.i18n)
}
