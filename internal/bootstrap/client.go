// 文件路径: internal/bootstrap/client.go
// 模块说明: 命令行客户端与终端面板的依赖组装：本地缓存后端、HTTP 传输、记录存储和数据管理。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lababa/lababa/internal/artifacts"
	"github.com/lababa/lababa/internal/cache"
	"github.com/lababa/lababa/internal/client/datamanager"
	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/client/remote"
	"github.com/lababa/lababa/internal/client/transport"
	"github.com/lababa/lababa/internal/config"
	"github.com/lababa/lababa/internal/migrations"
	"github.com/lababa/lababa/internal/stats"
)

// Client 客户端运行时依赖，Close 释放缓存后端与对象存储。
type Client struct {
	Cache     *localcache.Manager
	Transport *transport.Client
	Remote    *remote.Client
	Records   *recordstore.Store
	Data      *datamanager.Manager
	Artifacts artifacts.Store
}

// Close 依次关闭对象存储与缓存。
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Artifacts != nil {
		errs = append(errs, c.Artifacts.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}

// ClientOption 调整客户端组装过程，主要用于测试。
type ClientOption func(*clientOptions)

type clientOptions struct {
	offline   bool
	clock     stats.Clock
	listener  transport.Listener
	artifacts artifacts.Store
}

// Offline 不接入远端，记录只保存在本地缓存。
func Offline() ClientOption {
	return func(o *clientOptions) { o.offline = true }
}

// WithClientClock 替换时钟。
func WithClientClock(clock stats.Clock) ClientOption {
	return func(o *clientOptions) { o.clock = clock }
}

// WithTransportListener 订阅登录提示与失败事件。
func WithTransportListener(l transport.Listener) ClientOption {
	return func(o *clientOptions) { o.listener = l }
}

// WithArtifactStore 直接指定快照存储，跳过 S3 配置。
func WithArtifactStore(store artifacts.Store) ClientOption {
	return func(o *clientOptions) { o.artifacts = store }
}

// OpenCacheBackend 按 client.cache.backend 打开本地缓存后端。
func OpenCacheBackend(ctx context.Context, cfg config.CacheConfig) (localcache.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "memory":
		return localcache.NewMemoryBackend(cache.NewStore(cache.Options{DefaultTTL: cache.NoExpiration})), nil
	case "", "sqlite":
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db, migrations.ClientSet); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate client cache: %w", err)
		}
		return localcache.NewSQLiteBackend(db), nil
	case "redis":
		return localcache.NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q / 不支持的缓存后端", cfg.Backend)
	}
}

// OpenArtifactStore 配置了 bucket 时返回 S3 存储，否则返回空实现。
func OpenArtifactStore(ctx context.Context, cfg config.BackupConfig) (artifacts.Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return artifacts.NewNoopStore(), nil
	}
	return artifacts.NewS3Store(ctx, artifacts.S3Config{
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
	})
}

// BuildClient 组装客户端。配置里的静态 token 只在缓存中尚无 token 时写入。
func BuildClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := clientOptions{clock: stats.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	backend, err := OpenCacheBackend(ctx, cfg.Client.Cache)
	if err != nil {
		return nil, err
	}
	cacheMgr := localcache.New(backend, logger)
	if token := strings.TrimSpace(cfg.Client.Token); token != "" && cacheMgr.Token() == "" {
		cacheMgr.SetToken(token)
	}

	publicPaths, err := transport.CompilePublicPaths(cfg.Client.PublicPaths)
	if err != nil {
		_ = cacheMgr.Close()
		return nil, err
	}
	httpClient := transport.New(transport.Config{
		BaseURL:     cfg.Client.BaseURL,
		PublicPaths: publicPaths,
		Timeout:     cfg.Client.Timeout,
	},
		transport.WithTokenSource(cacheMgr),
		transport.WithListener(o.listener),
		transport.WithLogger(logger),
	)
	remoteClient := remote.New(httpClient)

	storeOpts := []recordstore.Option{
		recordstore.WithClock(o.clock),
		recordstore.WithLogger(logger),
		recordstore.WithDefaultOwner(cfg.Client.DefaultUser),
	}
	if !o.offline {
		storeOpts = append(storeOpts, recordstore.WithRemote(remoteClient))
	}
	records := recordstore.New(cacheMgr, storeOpts...)

	store := o.artifacts
	if store == nil {
		if store, err = OpenArtifactStore(ctx, cfg.Backup); err != nil {
			_ = cacheMgr.Close()
			return nil, err
		}
	}
	data := datamanager.New(cacheMgr, records,
		datamanager.WithArtifacts(store, cfg.Backup.Prefix),
		datamanager.WithClock(o.clock),
		datamanager.WithLogger(logger),
	)

	return &Client{
		Cache:     cacheMgr,
		Transport: httpClient,
		Remote:    remoteClient,
		Records:   records,
		Data:      data,
		Artifacts: store,
	}, nil
}
