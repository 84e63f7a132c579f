// 文件路径: internal/bootstrap/infra.go
// 模块说明: 组装服务端共享基础设施（缓存、JWT、多语言）以及业务服务和定时任务。
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lababa/lababa/internal/api"
	"github.com/lababa/lababa/internal/auth/token"
	"github.com/lababa/lababa/internal/cache"
	"github.com/lababa/lababa/internal/config"
	"github.com/lababa/lababa/internal/job"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/i18n"
)

// Infrastructure bundles shared helpers required by the services.
type Infrastructure struct {
	Cache cache.Store
	Token *token.Manager
	I18n  *i18n.Manager
}

// BuildInfrastructure wires default implementations for cache/token/i18n helpers.
// cfg.Auth.SigningKey 需已由 ResolveJWTSigningKey 解析。
func BuildInfrastructure(cfg *config.Config, clock stats.Clock, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if cfg.Auth.SigningKey == "" || cfg.Auth.SigningKey == defaultJWTSigningKey {
		return nil, fmt.Errorf("auth.signing_key must be resolved before building infrastructure / 签名密钥尚未解析")
	}
	if clock == nil {
		clock = stats.SystemClock
	}

	cacheStore := cache.NewStore(cache.Options{
		Prefix:          "lababa",
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
	})

	tokenManager, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
		Now:        clock,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	i18nManager, err := i18n.NewManager(i18n.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("i18n manager: %w", err)
	}

	return &Infrastructure{Cache: cacheStore, Token: tokenManager, I18n: i18nManager}, nil
}

// BuildServices 基于仓储组装 HTTP 层依赖的全部服务；记录变更会让排行榜缓存失效。
func BuildServices(cfg *config.Config, store repository.Store, infra *Infrastructure, clock stats.Clock, logger *slog.Logger) api.Services {
	if clock == nil {
		clock = stats.SystemClock
	}
	ranking := service.NewRankingService(store.Records(), infra.Cache, cfg.Ranking.CacheTTL, clock, logger)
	return api.Services{
		Auth:       service.NewAuthService(store.Users(), store.Sessions(), infra.Token, clock, logger),
		User:       service.NewUserService(store.Users()),
		Record:     service.NewRecordService(store.Records(), clock, ranking.Invalidate),
		Statistics: service.NewStatisticsService(store.Records(), clock),
		Ranking:    ranking,
		Friend:     service.NewFriendService(store.Friends(), clock),
		I18n:       infra.I18n,
	}
}

// BuildScheduler 注册会话清理与排行榜刷新任务，调用方负责 Start/Stop。
func BuildScheduler(cfg *config.Config, services api.Services, logger *slog.Logger) (*job.Scheduler, error) {
	scheduler := job.NewScheduler(logger)
	if _, err := scheduler.Register(cfg.Jobs.SessionCleanup, job.NewSessionCleanupJob(services.Auth, logger)); err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.Jobs.RankingRefresh, job.NewRankingRefreshJob(services.Ranking)); err != nil {
		return nil, err
	}
	return scheduler, nil
}
