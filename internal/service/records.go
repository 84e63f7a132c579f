// 文件路径: internal/service/records.go
// 模块说明: 记录的增删改查；只有记录所有者能查看或修改，其他人的记录一律视为不存在。
package service

import (
	"context"
	"strings"

	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/sanitize"
)

// RecordService exposes record CRUD for the REST layer.
type RecordService interface {
	// Create 归属优先级：draft.UserID > actorID > record.DefaultUserID。
	Create(ctx context.Context, actorID string, draft record.Draft) (*record.Record, error)
	Detail(ctx context.Context, actorID, id string) (*record.Record, error)
	Update(ctx context.Context, actorID, id string, patch record.Patch) (*record.Record, error)
	Delete(ctx context.Context, actorID, id string) (*record.Record, error)
	List(ctx context.Context, query RecordQuery) (*RecordPage, error)
}

// RecordPage 分页结果，Total 为过滤后的总数。
type RecordPage struct {
	Total int64           `json:"total"`
	Items []record.Record `json:"items"`
}

// ChangeHook 在记录发生写操作后调用，排行榜缓存借此失效。
type ChangeHook func(ctx context.Context)

type recordService struct {
	records  repository.RecordRepository
	clock    stats.Clock
	onChange ChangeHook
}

// NewRecordService wires the record repository; clock and onChange may be nil.
func NewRecordService(records repository.RecordRepository, clock stats.Clock, onChange ChangeHook) RecordService {
	return &recordService{records: records, clock: clockOrDefault(clock), onChange: onChange}
}

func (s *recordService) Create(ctx context.Context, actorID string, draft record.Draft) (*record.Record, error) {
	owner := strings.TrimSpace(draft.UserID)
	if owner == "" {
		owner = strings.TrimSpace(actorID)
	}
	draft.Note = sanitize.Text(draft.Note)
	rec, err := record.Build(draft, owner, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, &rec); err != nil {
		return nil, translateRepoError("create record", err)
	}
	s.changed(ctx)
	return &rec, nil
}

func (s *recordService) Detail(ctx context.Context, actorID, id string) (*record.Record, error) {
	return s.owned(ctx, actorID, id)
}

func (s *recordService) Update(ctx context.Context, actorID, id string, patch record.Patch) (*record.Record, error) {
	if patch.Empty() {
		return nil, ErrInvalidArgument
	}
	existing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if patch.Note != nil {
		note := sanitize.Text(*patch.Note)
		patch.Note = &note
	}
	merged, err := record.Merge(*existing, patch)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, &merged); err != nil {
		return nil, translateRepoError("update record", err)
	}
	s.changed(ctx)
	return &merged, nil
}

func (s *recordService) Delete(ctx context.Context, actorID, id string) (*record.Record, error) {
	existing, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.Delete(ctx, existing.ID); err != nil {
		return nil, translateRepoError("delete record", err)
	}
	s.changed(ctx)
	return existing, nil
}

func (s *recordService) List(ctx context.Context, query RecordQuery) (*RecordPage, error) {
	return listPage(ctx, s.records, query, DefaultListLimit)
}

func listPage(ctx context.Context, records repository.RecordRepository, query RecordQuery, defaultLimit int) (*RecordPage, error) {
	total, err := records.Count(ctx, query.unpaged())
	if err != nil {
		return nil, translateRepoError("count records", err)
	}
	items, err := records.List(ctx, query.filter(defaultLimit))
	if err != nil {
		return nil, translateRepoError("list records", err)
	}
	if items == nil {
		items = []record.Record{}
	}
	return &RecordPage{Total: total, Items: items}, nil
}

// owned 读取记录并校验归属；actorID 为空时不做校验（仅命令行等内部调用）。
func (s *recordService) owned(ctx context.Context, actorID, id string) (*record.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError("find record", err)
	}
	if actorID != "" && rec.UserID != actorID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *recordService) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}
