// Package localcache 是客户端的本地持久缓存：离线时的读取来源，也是备份/恢复快照的来源。
//
// 所有操作都返回成功与否而不是抛出错误；失败会被记录日志，调用方保留内存中的旧状态继续运行。
package localcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/lababa/lababa/internal/record"
)

// 逻辑键名，与宿主存储无关。
const (
	KeyRecords        = "poop-records"
	KeyUserInfo       = "user-info"
	KeySettings       = "app-settings"
	KeyLastRecordTime = "last-record-time"
	KeyCurrentRecord  = "current-record"
	KeyAuthToken      = "auth-token"
)

// ErrStorage 本地缓存写入失败；内存状态已更新但没有落盘。
var ErrStorage = errors.New("local storage write failed / 本地存储写入失败")

// Manager 在 Backend 之上提供 JSON 编解码与按键的类型化读写。
type Manager struct {
	backend Backend
	logger  *slog.Logger
}

// New 创建缓存管理器；logger 为 nil 时使用 slog.Default()。
func New(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, logger: logger.With("component", "localcache")}
}

// Set 以 JSON 写入单个键。
func (m *Manager) Set(ctx context.Context, key string, value any) bool {
	return m.setMany(ctx, map[string]any{key: value})
}

// Get 读取并解码到 dest；键不存在或失败时返回 false，dest 保持调用方给定的默认值。
func (m *Manager) Get(ctx context.Context, key string, dest any) bool {
	raw, ok, err := m.backend.Get(ctx, key)
	if err != nil {
		m.logger.Warn("read cache failed", "key", key, "error", err)
		return false
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		m.logger.Warn("decode cache value failed", "key", key, "error", err)
		return false
	}
	return true
}

// Remove 删除单个键。
func (m *Manager) Remove(ctx context.Context, key string) bool {
	if err := m.backend.Delete(ctx, key); err != nil {
		m.logger.Warn("remove cache key failed", "key", key, "error", err)
		return false
	}
	return true
}

// Clear 清空全部数据。
func (m *Manager) Clear(ctx context.Context) bool {
	if err := m.backend.Clear(ctx); err != nil {
		m.logger.Warn("clear cache failed", "error", err)
		return false
	}
	return true
}

// Close 释放后端资源。
func (m *Manager) Close() error {
	return m.backend.Close()
}

// Records 读取记录集合，失败或不存在时返回空切片。
func (m *Manager) Records(ctx context.Context) []record.Record {
	var records []record.Record
	if !m.Get(ctx, KeyRecords, &records) || records == nil {
		return []record.Record{}
	}
	return records
}

// LastRecordTime 读取最近一次记录的结束时间，缺省为 0。
func (m *Manager) LastRecordTime(ctx context.Context) int64 {
	var ts int64
	m.Get(ctx, KeyLastRecordTime, &ts)
	return ts
}

// SaveCollection 把记录集合与 lastRecordTime 作为一对原子写入。
func (m *Manager) SaveCollection(ctx context.Context, records []record.Record, lastRecordTime int64) bool {
	if records == nil {
		records = []record.Record{}
	}
	return m.setMany(ctx, map[string]any{
		KeyRecords:        records,
		KeyLastRecordTime: lastRecordTime,
	})
}

// UserInfo 读取缓存的用户信息。
func (m *Manager) UserInfo(ctx context.Context) (record.User, bool) {
	var user record.User
	ok := m.Get(ctx, KeyUserInfo, &user)
	return user, ok
}

// SaveUserInfo 写入用户信息。
func (m *Manager) SaveUserInfo(ctx context.Context, user record.User) bool {
	return m.Set(ctx, KeyUserInfo, user)
}

// Token 实现 transport.TokenSource，读取失败视为未登录。
func (m *Manager) Token() string {
	var token string
	m.Get(context.Background(), KeyAuthToken, &token)
	return token
}

// SetToken 实现 transport.TokenSink。
func (m *Manager) SetToken(token string) {
	m.Set(context.Background(), KeyAuthToken, token)
}

// Info 存储占用概览。
type Info struct {
	Keys []string `json:"keys"`
	Used int64    `json:"used"`
}

// Info 返回当前键列表与近似占用字节数（键长 + 值长）。
func (m *Manager) Info(ctx context.Context) Info {
	keys, err := m.backend.Keys(ctx)
	if err != nil {
		m.logger.Warn("list cache keys failed", "error", err)
		return Info{Keys: []string{}}
	}
	sort.Strings(keys)
	info := Info{Keys: keys}
	for _, key := range keys {
		raw, ok, err := m.backend.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		info.Used += int64(len(key) + len(raw))
	}
	return info
}

func (m *Manager) setMany(ctx context.Context, values map[string]any) bool {
	entries := make(map[string][]byte, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			m.logger.Warn("encode cache value failed", "key", key, "error", err)
			return false
		}
		entries[key] = raw
	}
	if err := m.backend.SetMany(ctx, entries); err != nil {
		m.logger.Warn("write cache failed", "keys", len(entries), "error", err)
		return false
	}
	return true
}
