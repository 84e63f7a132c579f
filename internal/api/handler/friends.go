package handler

import (
	"log/slog"
	"net/http"

	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/support/i18n"
)

// FriendHandler 好友邀请。
type FriendHandler struct {
	friends service.FriendService
	i18n    *i18n.Manager
	logger  *slog.Logger
}

func NewFriendHandler(friends service.FriendService, i18nMgr *i18n.Manager, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, i18n: i18nMgr, logger: logger}
}

// Invite POST /api/friends/invite，data 为邀请 id。
func (h *FriendHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := h.friends.Invite(ctx, currentUser(r))
	if err != nil {
		respondServiceError(ctx, w, h.logger, "friends.invite", err, h.i18n)
		return
	}
	respondOK(ctx, w, id, h.i18n)
}

// Accept POST /api/friends/accept {inviteId}
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		InviteID string `json:"inviteId"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondServiceError(ctx, w, h.logger, "friends.accept", err, h.i18n)
		return
	}
	pair, err := h.friends.Accept(ctx, currentUser(r), body.InviteID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, "friends.accept", err, h.i18n)
		return
	}
	respondOK(ctx, w, pair, h.i18n)
}

// List GET /api/friends/list
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rels, err := h.friends.List(ctx, currentUser(r))
	if err != nil {
		respondServiceError(ctx, w, h.logger, "friends.list", err, h.i18n)
		return
	}
	respondOK(ctx, w, map[string]any{"list": rels}, h.i18n)
}
