// 文件路径: internal/client/datamanager/manager.go
// 模块说明: 本地数据的导出、导入、清理、统计与校验，以及快照到对象存储的推送与拉取。
package datamanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lababa/lababa/internal/artifacts"
	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/stats"
)

var (
	ErrExportFailed = errors.New("export failed / 导出数据失败")
	ErrImportFailed = errors.New("import failed / 导入数据失败")
	ErrNoSnapshot   = errors.New("no snapshot found / 没有可用的备份")
)

// Manager 组合本地缓存与记录存储。
type Manager struct {
	cache     *localcache.Manager
	store     *recordstore.Store
	artifacts artifacts.Store
	prefix    string
	clock     stats.Clock
	logger    *slog.Logger
}

// Option 配置 Manager。
type Option func(*Manager)

// WithArtifacts 设置快照使用的对象存储及键前缀。
func WithArtifacts(store artifacts.Store, prefix string) Option {
	return func(m *Manager) {
		if store != nil {
			m.artifacts = store
		}
		m.prefix = prefix
	}
}

// WithClock 注入时钟。
func WithClock(c stats.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(cache *localcache.Manager, store *recordstore.Store, opts ...Option) *Manager {
	m := &Manager{
		cache:     cache,
		store:     store,
		artifacts: artifacts.NewNoopStore(),
		prefix:    "backups",
		clock:     stats.SystemClock,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "datamanager")
	return m
}

// Export 返回 JSON 快照。
func (m *Manager) Export(ctx context.Context) ([]byte, error) {
	data, ok := m.cache.Backup(ctx)
	if !ok {
		return nil, ErrExportFailed
	}
	return data, nil
}

// ExportFileName 导出文件的默认文件名。
func (m *Manager) ExportFileName(ext string) string {
	if ext == "" {
		ext = "json"
	}
	return fmt.Sprintf("poop-records-%s.%s", m.clock().Format("2006-01-02"), ext)
}

// Import 恢复快照，再只从本地缓存重建记录存储；这里不能走远端，否则刚恢复的数据会被远端列表覆盖。
func (m *Manager) Import(ctx context.Context, data []byte) bool {
	if !m.cache.Restore(ctx, data) {
		m.logger.Warn("import snapshot failed")
		return false
	}
	m.store.Reload(ctx)
	return true
}

// ClearAll 清空记录集合与全部本地缓存。
func (m *Manager) ClearAll(ctx context.Context) bool {
	cleared := m.store.Clear(ctx)
	if !m.cache.Clear(ctx) {
		return false
	}
	return cleared
}

// Stats 本地数据概况。
type Stats struct {
	RecordCount  int      `json:"recordCount"`
	StorageUsed  int64    `json:"storageUsed"`
	Keys         []string `json:"keys"`
	OldestRecord *int64   `json:"oldestRecord"`
	NewestRecord *int64   `json:"newestRecord"`
}

// Stats 统计记录条数、存储占用以及最早/最晚的 startTime。
func (m *Manager) Stats(ctx context.Context) Stats {
	records := m.store.Records()
	info := m.cache.Info(ctx)
	out := Stats{RecordCount: len(records), StorageUsed: info.Used, Keys: info.Keys}
	for _, r := range records {
		start := r.StartTime
		if out.OldestRecord == nil || start < *out.OldestRecord {
			out.OldestRecord = &start
		}
		if out.NewestRecord == nil || start > *out.NewestRecord {
			newest := start
			out.NewestRecord = &newest
		}
	}
	return out
}

// Push 把当前快照上传到对象存储，返回对象键。
func (m *Manager) Push(ctx context.Context, userID string) (string, error) {
	data, err := m.Export(ctx)
	if err != nil {
		return "", err
	}
	key := artifacts.SnapshotKey(m.prefix, userID, m.clock())
	if err := m.artifacts.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("push snapshot: %w", err)
	}
	m.logger.Info("snapshot pushed", "key", key, "bytes", len(data))
	return key, nil
}

// Pull 下载快照并导入；key 为空时取该用户最新的一份。
func (m *Manager) Pull(ctx context.Context, userID, key string) (string, error) {
	if key == "" {
		latest, err := m.latestKey(ctx, userID)
		if err != nil {
			return "", err
		}
		key = latest
	}
	data, _, err := m.artifacts.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("pull snapshot: %w", err)
	}
	if !json.Valid(data) {
		return "", fmt.Errorf("snapshot %s is not valid json / 备份内容不是合法 JSON", key)
	}
	if !m.Import(ctx, data) {
		return "", fmt.Errorf("import snapshot %s: %w", key, ErrImportFailed)
	}
	return key, nil
}

func (m *Manager) latestKey(ctx context.Context, userID string) (string, error) {
	objects, err := m.artifacts.List(ctx, artifacts.SnapshotPrefix(m.prefix, userID))
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(objects) == 0 {
		return "", ErrNoSnapshot
	}
	return objects[len(objects)-1].Key, nil
}
