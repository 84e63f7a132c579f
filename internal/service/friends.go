// 文件路径: internal/service/friends.go
// 模块说明: 好友邀请；接受邀请是幂等的，重复接受返回同一对关系。
package service

import (
	"context"
	"strings"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
)

// FriendService manages invites and accepted relations.
type FriendService interface {
	Invite(ctx context.Context, inviterID string) (string, error)
	Accept(ctx context.Context, inviteeID, inviteID string) (*Friendship, error)
	List(ctx context.Context, userID string) ([]repository.FriendRelation, error)
}

// Friendship 接受邀请后的结果。
type Friendship struct {
	InviterUserID string `json:"inviterUserId"`
	InviteeUserID string `json:"inviteeUserId"`
}

type friendService struct {
	friends repository.FriendRepository
	clock   stats.Clock
}

func NewFriendService(friends repository.FriendRepository, clock stats.Clock) FriendService {
	return &friendService{friends: friends, clock: clockOrDefault(clock)}
}

func (s *friendService) Invite(ctx context.Context, inviterID string) (string, error) {
	if strings.TrimSpace(inviterID) == "" {
		return "", ErrUnauthorized
	}
	invite := &repository.FriendInvite{
		ID:            record.NewID(),
		InviterUserID: inviterID,
		CreatedAt:     nowMillis(s.clock),
	}
	if err := s.friends.CreateInvite(ctx, invite); err != nil {
		return "", translateRepoError("create invite", err)
	}
	return invite.ID, nil
}

func (s *friendService) Accept(ctx context.Context, inviteeID, inviteID string) (*Friendship, error) {
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return nil, ErrInvalidArgument
	}
	invite, err := s.friends.FindInvite(ctx, inviteID)
	if err != nil {
		return nil, translateRepoError("find invite", err)
	}
	if invite.InviterUserID == inviteeID {
		return nil, ErrSelfInvite
	}
	rel := &repository.FriendRelation{
		ID:            record.NewID(),
		InviterUserID: invite.InviterUserID,
		InviteeUserID: inviteeID,
		CreatedAt:     nowMillis(s.clock),
	}
	if _, err := s.friends.AddRelation(ctx, rel); err != nil {
		return nil, translateRepoError("add relation", err)
	}
	return &Friendship{InviterUserID: invite.InviterUserID, InviteeUserID: inviteeID}, nil
}

func (s *friendService) List(ctx context.Context, userID string) ([]repository.FriendRelation, error) {
	rels, err := s.friends.ListRelations(ctx, userID)
	if err != nil {
		return nil, translateRepoError("list relations", err)
	}
	if rels == nil {
		rels = []repository.FriendRelation{}
	}
	return rels, nil
}
