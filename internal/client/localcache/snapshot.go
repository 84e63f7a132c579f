package localcache

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/lababa/lababa/internal/record"
)

// Snapshot 备份文档，只包含非空字段。
type Snapshot struct {
	Records        []record.Record `json:"records,omitempty"`
	UserInfo       *record.User    `json:"userInfo,omitempty"`
	Settings       json.RawMessage `json:"settings,omitempty"`
	LastRecordTime int64           `json:"lastRecordTime,omitempty"`
	CurrentRecord  json.RawMessage `json:"currentRecord,omitempty"`
}

// Snapshot 读取当前缓存内容组成快照。
func (m *Manager) Snapshot(ctx context.Context) Snapshot {
	var snap Snapshot
	if records := m.Records(ctx); len(records) > 0 {
		snap.Records = records
	}
	if user, ok := m.UserInfo(ctx); ok {
		snap.UserInfo = &user
	}
	snap.Settings = m.rawValue(ctx, KeySettings)
	if ts := m.LastRecordTime(ctx); ts > 0 {
		snap.LastRecordTime = ts
	}
	snap.CurrentRecord = m.rawValue(ctx, KeyCurrentRecord)
	return snap
}

// Backup 生成缩进格式的 JSON 快照。
func (m *Manager) Backup(ctx context.Context) ([]byte, bool) {
	data, err := json.MarshalIndent(m.Snapshot(ctx), "", "  ")
	if err != nil {
		m.logger.Warn("encode backup failed", "error", err)
		return nil, false
	}
	return data, true
}

// Restore 解析快照并逐字段写回；文档中缺失的字段不会清空已有值。
// 解析失败或任一字段写入失败时返回 false。
func (m *Manager) Restore(ctx context.Context, data []byte) bool {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		m.logger.Warn("decode backup failed", "error", err)
		return false
	}
	ok := true
	if snap.Records != nil {
		ok = m.Set(ctx, KeyRecords, snap.Records) && ok
	}
	if snap.UserInfo != nil {
		ok = m.Set(ctx, KeyUserInfo, snap.UserInfo) && ok
	}
	if present(snap.Settings) {
		ok = m.setRaw(ctx, KeySettings, snap.Settings) && ok
	}
	if snap.LastRecordTime != 0 {
		ok = m.Set(ctx, KeyLastRecordTime, snap.LastRecordTime) && ok
	}
	if present(snap.CurrentRecord) {
		ok = m.setRaw(ctx, KeyCurrentRecord, snap.CurrentRecord) && ok
	}
	return ok
}

func (m *Manager) rawValue(ctx context.Context, key string) json.RawMessage {
	var raw json.RawMessage
	if !m.Get(ctx, key, &raw) || !present(raw) {
		return nil
	}
	return raw
}

func (m *Manager) setRaw(ctx context.Context, key string, raw json.RawMessage) bool {
	if err := m.backend.SetMany(ctx, map[string][]byte{key: []byte(raw)}); err != nil {
		m.logger.Warn("write cache failed", "key", key, "error", err)
		return false
	}
	return true
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
