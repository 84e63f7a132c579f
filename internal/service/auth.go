// 文件路径: internal/service/auth.go
// 模块说明: 小程序登录与会话校验；令牌由 JWT 承载，会话是否有效以 sessions 表为准。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lababa/lababa/internal/auth/token"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/sanitize"
)

// mockOpenIDCodeLength 本地换取 openId 时截取登录 code 的长度。
const mockOpenIDCodeLength = 16

// AuthService coordinates weapp login and session verification.
type AuthService interface {
	WeappLogin(ctx context.Context, input WeappLoginInput) (*LoginResult, error)
	Verify(ctx context.Context, rawToken string) (*Claims, error)
	Logout(ctx context.Context, sessionID string) error
	// CleanupExpiredSessions 删除已过期的会话，返回删除条数。
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// WeappLoginInput 小程序登录请求体。
type WeappLoginInput struct {
	Code      string `json:"code"`
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
}

// LoginResult 登录结果，ExpiresAt 为毫秒时间戳。
type LoginResult struct {
	User      record.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
}

// Claims describe the authenticated principal behind a request.
type Claims struct {
	UserID    string
	SessionID string
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokenMgr *token.Manager
	clock    stats.Clock
	logger   *slog.Logger
}

// NewAuthService wires repositories and the token manager.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, tokenMgr *token.Manager, clock stats.Clock, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{users: users, sessions: sessions, tokenMgr: tokenMgr, clock: clockOrDefault(clock), logger: logger}
}

// MockOpenID 由登录 code 生成 openId：code 为空时返回空串。
func MockOpenID(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if len(code) > mockOpenIDCodeLength {
		code = code[:mockOpenIDCodeLength]
	}
	return "mock_" + code
}

func (s *authService) WeappLogin(ctx context.Context, input WeappLoginInput) (*LoginResult, error) {
	if s.tokenMgr == nil {
		return nil, fmt.Errorf("token manager not configured / 未配置 token 管理器")
	}
	user, err := s.upsertUser(ctx, MockOpenID(input.Code), sanitize.Text(input.NickName), strings.TrimSpace(input.AvatarURL))
	if err != nil {
		return nil, err
	}

	now := s.clock()
	session := &repository.Session{
		ID:        record.NewID(),
		UserID:    user.ID,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(s.tokenMgr.TTL()).UnixMilli(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	signed, _, err := s.tokenMgr.Issue(user.ID, session.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("weapp login", "user_id", user.ID, "session_id", session.ID)
	return &LoginResult{User: *user, Token: signed, ExpiresAt: session.ExpiresAt}, nil
}

// upsertUser 按 openId 查找用户；不存在时新建，存在时只合并非空的昵称与头像。
func (s *authService) upsertUser(ctx context.Context, openID, nickName, avatarURL string) (*record.User, error) {
	user, err := s.users.FindByOpenID(ctx, openID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &record.User{ID: record.NewID(), OpenID: openID}
	case err != nil:
		return nil, fmt.Errorf("find user by openId: %w", err)
	}
	if nickName != "" {
		user.NickName = nickName
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	raw := strings.TrimSpace(rawToken)
	if raw == "" || s.tokenMgr == nil {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokenMgr.Parse(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session.UserID != claims.UserID() || session.Expired(nowMillis(s.clock)) {
		return nil, ErrUnauthorized
	}
	return &Claims{UserID: session.UserID, SessionID: session.ID}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidArgument
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return translateRepoError("delete session", err)
	}
	return nil
}

func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx, nowMillis(s.clock))
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return removed, nil
}

