// Package recordstore 持有当前会话的记录集合：创建时推导时间字段，读取时远端失败则回退到本地缓存。
//
// 所有公开方法由同一把互斥锁串行化；集合每次变化后，记录与 lastRecordTime 作为一对写入本地缓存。
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

// ErrNotFound 按 id 查找记录失败。
var ErrNotFound = errors.New("record not found / 记录不存在")

// Remote 记录的远端来源，nil 表示纯离线模式。
type Remote interface {
	List(ctx context.Context, f stats.Filter) ([]record.Record, error)
	Create(ctx context.Context, d record.Draft) (record.Record, error)
	Update(ctx context.Context, id string, p record.Patch) (record.Record, error)
	Delete(ctx context.Context, id string) (record.Record, error)
}

// Store 会话级记录存储，启动时构造一次，注销时调用 Reset。
type Store struct {
	mu sync.Mutex

	remote Remote
	cache  *localcache.Manager
	clock  stats.Clock
	logger *slog.Logger
	owner  string

	records        []record.Record
	lastRecordTime int64
	recording      *Recording
}

// Option 配置 Store。
type Option func(*Store)

// WithRemote 设置远端来源。
func WithRemote(r Remote) Option {
	return func(s *Store) { s.remote = r }
}

// WithClock 注入时钟，测试使用。
func WithClock(c stats.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultOwner 无法从缓存的用户信息解析归属时使用的用户 id。
func WithDefaultOwner(id string) Option {
	return func(s *Store) { s.owner = id }
}

// New 创建记录存储并从缓存恢复进行中的计时。
func New(cache *localcache.Manager, opts ...Option) *Store {
	s := &Store{
		cache:   cache,
		clock:   stats.SystemClock,
		logger:  slog.Default(),
		records: []record.Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "recordstore")
	s.restoreRecording(context.Background())
	return s
}

// Records 返回当前集合的副本，最新的在前。
func (s *Store) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// LastRecordTime 集合中最大的 endTime，空集合为 0。
func (s *Store) LastRecordTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRecordTime
}

// Summary 对当前集合按条件过滤后做汇总。
func (s *Store) Summary(f stats.Filter) stats.Summary {
	return stats.Summarize(stats.Apply(s.Records(), f))
}

// Load 先请求远端；任何失败都回退到本地缓存，缓存为空时集合保持为空，不视为错误。
func (s *Store) Load(ctx context.Context) []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remote != nil {
		items, err := s.remote.List(ctx, stats.Filter{})
		if err == nil {
			s.warnDropped(ctx, items)
			s.replace(items)
			s.persist(ctx)
			return slices.Clone(s.records)
		}
		s.logger.Warn("remote list failed, falling back to cache", "error", err)
	}
	s.replace(s.cache.Records(ctx))
	return slices.Clone(s.records)
}

// Reload 只从本地缓存重建集合与进行中的计时，不访问远端；恢复快照后使用。
func (s *Store) Reload(ctx context.Context) []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(s.cache.Records(ctx))
	s.recording = nil
	s.restoreRecording(ctx)
	return slices.Clone(s.records)
}

// warnDropped 远端列表以远端为准覆盖本地；本地独有的记录（例如远端创建失败后留下的）会被丢弃，这里留下日志。
func (s *Store) warnDropped(ctx context.Context, remote []record.Record) {
	known := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		known[r.ID] = struct{}{}
	}
	var dropped []string
	for _, r := range s.cache.Records(ctx) {
		if _, ok := known[r.ID]; !ok {
			dropped = append(dropped, r.ID)
		}
	}
	if len(dropped) > 0 {
		s.logger.Warn("local records missing from remote list are dropped", "count", len(dropped), "ids", dropped)
	}
}

// Create 推导时间字段、解析归属用户，插入集合头部；远端创建失败时保留本地记录，缓存总会被写入。
// 缓存写入失败时记录仍然返回，错误包装 localcache.ErrStorage。
func (s *Store) Create(ctx context.Context, d record.Draft) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, d)
}

func (s *Store) create(ctx context.Context, d record.Draft) (record.Record, error) {
	rec, err := record.Build(d, s.resolveOwner(ctx, d.UserID), s.clock())
	if err != nil {
		return record.Record{}, err
	}
	if s.remote != nil {
		created, err := s.remote.Create(ctx, draftOf(rec))
		if err != nil {
			s.logger.Warn("remote create failed, keeping local record", "id", rec.ID, "error", err)
		} else {
			rec = created
		}
	}
	s.records = append([]record.Record{rec}, s.records...)
	s.refreshLast()
	return rec, s.persistErr(ctx, "create "+rec.ID)
}

// Update 合并补丁，id 与 userId 保持不变。缓存写入失败的处理与 Create 相同。
func (s *Store) Update(ctx context.Context, id string, p record.Patch) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return record.Record{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	merged, err := record.Merge(s.records[idx], p)
	if err != nil {
		return record.Record{}, err
	}
	if s.remote != nil {
		if _, err := s.remote.Update(ctx, id, p); err != nil {
			s.logger.Warn("remote update failed", "id", id, "error", err)
		}
	}
	s.records[idx] = merged
	s.refreshLast()
	return merged, s.persistErr(ctx, "update "+id)
}

// Delete 删除并返回被删除的记录；不存在时集合不变。
func (s *Store) Delete(ctx context.Context, id string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return record.Record{}, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	removed := s.records[idx]
	if s.remote != nil {
		if _, err := s.remote.Delete(ctx, id); err != nil {
			s.logger.Warn("remote delete failed", "id", id, "error", err)
		}
	}
	s.records = slices.Delete(s.records, idx, idx+1)
	s.refreshLast()
	return removed, s.persistErr(ctx, "delete "+id)
}

// Clear 清空集合并写入缓存。
func (s *Store) Clear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []record.Record{}
	s.lastRecordTime = 0
	return s.persist(ctx)
}

// Reset 注销时调用：只清空内存状态，本地缓存保持不变。
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []record.Record{}
	s.lastRecordTime = 0
	s.recording = nil
}

// TimeSinceLastRecord 距离最近一次记录结束的时长；没有记录时返回 false。
func (s *Store) TimeSinceLastRecord() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRecordTime == 0 {
		return 0, false
	}
	return s.clock().Sub(time.UnixMilli(s.lastRecordTime)), true
}

// FormatSince 以 "X小时Y分钟" 或 "Y分钟" 的形式展示时长。
func FormatSince(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%d小时%d分钟", hours, minutes)
	}
	return fmt.Sprintf("%d分钟", minutes)
}

func (s *Store) replace(items []record.Record) {
	if items == nil {
		items = []record.Record{}
	}
	s.records = slices.Clone(items)
	s.refreshLast()
}

func (s *Store) refreshLast() {
	var last int64
	for _, r := range s.records {
		if r.EndTime > last {
			last = r.EndTime
		}
	}
	s.lastRecordTime = last
}

// persist 写入失败只记录日志，内存状态保持不变。
func (s *Store) persist(ctx context.Context) bool {
	if ok := s.cache.SaveCollection(ctx, s.records, s.lastRecordTime); !ok {
		s.logger.Warn("mirror records to cache failed", "count", len(s.records))
		return false
	}
	return true
}

// persistErr 用于单条写操作：缓存写入失败时返回包装了 localcache.ErrStorage 的错误，
// 同时仍返回已在内存中生效的记录，调用方据此决定是否提示或重试。
func (s *Store) persistErr(ctx context.Context, op string) error {
	if s.persist(ctx) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, localcache.ErrStorage)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r record.Record) bool { return r.ID == id })
}

func (s *Store) resolveOwner(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if user, ok := s.cache.UserInfo(ctx); ok && user.ID != "" {
		return user.ID
	}
	if s.owner != "" {
		return s.owner
	}
	return record.DefaultUserID
}

func draftOf(r record.Record) record.Draft {
	start, end, duration, completed := r.StartTime, r.EndTime, r.Duration, r.IsCompleted
	return record.Draft{
		UserID:      r.UserID,
		StartTime:   &start,
		EndTime:     &end,
		Duration:    &duration,
		Color:       string(r.Color),
		Status:      string(r.Status),
		Shape:       string(r.Shape),
		Amount:      string(r.Amount),
		Note:        r.Note,
		IsCompleted: &completed,
	}
}
