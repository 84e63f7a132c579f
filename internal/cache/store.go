// 文件路径: internal/cache/store.go
// 模块说明: 进程内 TTL 缓存，排行榜结果缓存与客户端内存存储后端共用这一实现。
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NoExpiration 写入后永不过期。
const NoExpiration = gocache.NoExpiration

// Store 带命名空间的进程内缓存。
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (any, bool)
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string)
	// Keys 返回当前命名空间下未过期的键（去掉前缀）。
	Keys(ctx context.Context) []string
	// Flush 清空当前命名空间；根命名空间会清空整个缓存。
	Flush(ctx context.Context)
	Namespace(prefix string) Store
}

// Options 配置内存缓存行为。
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore 创建基于 go-cache 的缓存实现。DefaultTTL 为 NoExpiration 时条目不过期。
func NewStore(opts Options) Store {
	defaultTTL := opts.DefaultTTL
	if defaultTTL == 0 {
		defaultTTL = 5 * time.Minute
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &goCacheStore{
		backend:    gocache.New(defaultTTL, cleanup),
		defaultTTL: defaultTTL,
		prefix:     normalizePrefix(opts.Prefix),
	}
}

type goCacheStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
	prefix     string
}

func (s *goCacheStore) Set(_ context.Context, key string, value any, ttl time.Duration) {
	s.backend.Set(s.prefixed(key), value, s.normalizeTTL(ttl))
}

func (s *goCacheStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.Set(ctx, key, data, ttl)
	return nil
}

func (s *goCacheStore) Get(_ context.Context, key string) (any, bool) {
	return s.backend.Get(s.prefixed(key))
}

func (s *goCacheStore) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []byte:
		return append([]byte(nil), v...), true
	case string:
		return []byte(v), true
	}
	return nil, false
}

func (s *goCacheStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := s.GetBytes(ctx, key)
	if !ok {
		return false, nil
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *goCacheStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.prefixed(key))
}

func (s *goCacheStore) Keys(_ context.Context) []string {
	items := s.backend.Items()
	keys := make([]string, 0, len(items))
	for full := range items {
		if key, ok := s.strip(full); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *goCacheStore) Flush(ctx context.Context) {
	if s.prefix == "" {
		s.backend.Flush()
		return
	}
	for _, key := range s.Keys(ctx) {
		s.Delete(ctx, key)
	}
}

func (s *goCacheStore) Namespace(prefix string) Store {
	return &goCacheStore{
		backend:    s.backend,
		defaultTTL: s.defaultTTL,
		prefix:     joinPrefixes(s.prefix, prefix),
	}
}

func (s *goCacheStore) prefixed(key string) string {
	key = strings.TrimSpace(key)
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *goCacheStore) strip(full string) (string, bool) {
	if s.prefix == "" {
		return full, true
	}
	if !strings.HasPrefix(full, s.prefix+":") {
		return "", false
	}
	return strings.TrimPrefix(full, s.prefix+":"), true
}

func (s *goCacheStore) normalizeTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return gocache.DefaultExpiration
	}
	return ttl
}

func normalizePrefix(prefix string) string {
	return strings.Trim(prefix, ": ")
}

func joinPrefixes(parts ...string) string {
	var normalized []string
	for _, part := range parts {
		if trimmed := normalizePrefix(part); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return strings.Join(normalized, ":")
}
