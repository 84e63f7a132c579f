package service

import (
	"context"
	"strings"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/support/sanitize"
)

// UserService 用户资料查询与修改。
type UserService interface {
	Detail(ctx context.Context, id string) (*record.User, error)
	// Update 只允许修改自己的资料，空字段保持原值。
	Update(ctx context.Context, actorID, id string, input UserUpdate) (*record.User, error)
}

// UserUpdate 资料修改请求体。
type UserUpdate struct {
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Detail(ctx context.Context, id string) (*record.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError("find user", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actorID, id string, input UserUpdate) (*record.User, error) {
	user, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == "" || user.ID != actorID {
		return nil, ErrForbidden
	}
	if nick := sanitize.Text(input.NickName); nick != "" {
		user.NickName = nick
	}
	if avatar := strings.TrimSpace(input.AvatarURL); avatar != "" {
		user.AvatarURL = avatar
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, translateRepoError("save user", err)
	}
	return user, nil
}
