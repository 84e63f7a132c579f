// Package artifacts 保存备份快照等对象文件；未配置对象存储时使用 NoopStore。
package artifacts

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("artifact store not configured / 未配置对象存储")

// Object 对象列表中的一项。
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store 对象存储抽象。
type Store interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// SnapshotPrefix 某个用户全部备份对象的公共前缀，以 / 结尾。
func SnapshotPrefix(prefix, userID string) string {
	owner := strings.TrimSpace(userID)
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join(strings.Trim(prefix, "/"), owner) + "/"
}

// SnapshotKey 生成备份对象键：<prefix>/<userID>/<yyyymmdd-hhmmss>.json，按键名排序即按时间排序。
func SnapshotKey(prefix, userID string, at time.Time) string {
	return SnapshotPrefix(prefix, userID) + at.UTC().Format("20060102-150405") + ".json"
}

type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) Put(_ context.Context, _ string, _ []byte, _ string) error {
	return ErrNotConfigured
}

func (s *NoopStore) Get(_ context.Context, _ string) ([]byte, string, error) {
	return nil, "", ErrNotConfigured
}

func (s *NoopStore) List(_ context.Context, _ string) ([]Object, error) {
	return nil, ErrNotConfigured
}

func (s *NoopStore) Delete(_ context.Context, _ string) error {
	return ErrNotConfigured
}

func (s *NoopStore) Close() error {
	return nil
}
