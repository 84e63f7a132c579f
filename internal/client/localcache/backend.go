package localcache

import (
	"context"
	"sync"

	"github.com/lababa/lababa/internal/cache"
)

// Backend 宿主存储设施的抽象，值为已编码的字节。
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetMany 一次写入多个键，要么全部成功要么全部失败。
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryBackend 进程内后端，基于共享的 go-cache 存储，进程退出即丢失。
type MemoryBackend struct {
	mu    sync.Mutex
	store cache.Store
}

// NewMemoryBackend 在 store 的 localcache 命名空间下保存数据；store 为 nil 时新建一个。
func NewMemoryBackend(store cache.Store) *MemoryBackend {
	if store == nil {
		store = cache.NewStore(cache.Options{DefaultTTL: cache.NoExpiration})
	}
	return &MemoryBackend{store: store.Namespace("localcache")}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.store.GetBytes(ctx, key)
	return value, ok, nil
}

func (m *MemoryBackend) SetMany(ctx context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range entries {
		m.store.Set(ctx, key, append([]byte(nil), value...), cache.NoExpiration)
	}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Delete(ctx, key)
	return nil
}

func (m *MemoryBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Flush(ctx)
	return nil
}

func (m *MemoryBackend) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Keys(ctx), nil
}

func (m *MemoryBackend) Close() error { return nil }
