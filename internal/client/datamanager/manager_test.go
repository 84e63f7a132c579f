package datamanager

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/lababa/lababa/internal/artifacts"
	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

type memArtifacts struct {
	objects map[string][]byte
}

func (m *memArtifacts) Put(_ context.Context, key string, payload []byte, _ string) error {
	m.objects[key] = append([]byte(nil), payload...)
	return nil
}

func (m *memArtifacts) Get(_ context.Context, key string) ([]byte, string, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNoSnapshot
	}
	return data, "application/json", nil
}

func (m *memArtifacts) List(_ context.Context, prefix string) ([]artifacts.Object, error) {
	var out []artifacts.Object
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, artifacts.Object{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memArtifacts) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memArtifacts) Close() error { return nil }

type fixture struct {
	cache   *localcache.Manager
	store   *recordstore.Store
	manager *Manager
	objects *memArtifacts
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), objects: &memArtifacts{objects: map[string][]byte{}}}
	clock := func() time.Time { return f.now }
	f.cache = localcache.New(localcache.NewMemoryBackend(nil), nil)
	f.store = recordstore.New(f.cache, recordstore.WithClock(clock))
	f.manager = New(f.cache, f.store, WithClock(clock), WithArtifacts(f.objects, "backups"))
	return f
}

func (f *fixture) seed(t *testing.T, durations ...int64) {
	t.Helper()
	for _, d := range durations {
		_, err := f.store.Create(context.Background(), record.Draft{Duration: &d, Note: "n"})
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t, 10, 20, 30)

	data, err := src.manager.Export(ctx)
	require.NoError(t, err)
	assert.True(t, Validate(data).IsValid)

	dst := newFixture(t)
	require.True(t, dst.manager.Import(ctx, data))
	assert.Equal(t, src.store.Records(), dst.store.Records())
	assert.Equal(t, src.store.LastRecordTime(), dst.store.LastRecordTime())
}

// emptyRemote 在线但服务端没有任何记录。
type emptyRemote struct{ listCalls int }

func (r *emptyRemote) List(context.Context, stats.Filter) ([]record.Record, error) {
	r.listCalls++
	return []record.Record{}, nil
}

func (r *emptyRemote) Create(_ context.Context, d record.Draft) (record.Record, error) {
	return record.Build(d, d.UserID, time.UnixMilli(*d.EndTime))
}

func (r *emptyRemote) Update(context.Context, string, record.Patch) (record.Record, error) {
	return record.Record{}, nil
}

func (r *emptyRemote) Delete(context.Context, string) (record.Record, error) {
	return record.Record{}, nil
}

func TestImportWithReachableRemoteKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t, 10, 20, 30)
	src.store.StartRecording(ctx)
	data, err := src.manager.Export(ctx)
	require.NoError(t, err)

	remote := &emptyRemote{}
	cache := localcache.New(localcache.NewMemoryBackend(nil), nil)
	store := recordstore.New(cache, recordstore.WithRemote(remote), recordstore.WithClock(func() time.Time { return src.now }))
	store.Load(ctx)
	_, running := store.CurrentRecording()
	require.False(t, running)
	manager := New(cache, store)

	require.True(t, manager.Import(ctx, data))
	assert.Equal(t, 1, remote.listCalls)
	assert.Equal(t, src.store.Records(), store.Records())
	assert.Equal(t, src.store.LastRecordTime(), store.LastRecordTime())
	assert.Equal(t, src.store.Records(), cache.Records(ctx))
	assert.Equal(t, src.store.LastRecordTime(), cache.LastRecordTime(ctx))

	want, _ := src.store.CurrentRecording()
	got, running := store.CurrentRecording()
	require.True(t, running)
	assert.Equal(t, want, got)
}

func TestImportRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.manager.Import(context.Background(), []byte("not json")))
}

func TestStatsAndClearAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty := f.manager.Stats(ctx)
	assert.Zero(t, empty.RecordCount)
	assert.Nil(t, empty.OldestRecord)

	f.seed(t, 60, 120)
	st := f.manager.Stats(ctx)
	assert.Equal(t, 2, st.RecordCount)
	require.NotNil(t, st.OldestRecord)
	require.NotNil(t, st.NewestRecord)
	assert.Less(t, *st.OldestRecord, *st.NewestRecord)
	assert.Positive(t, st.StorageUsed)

	require.True(t, f.manager.ClearAll(ctx))
	assert.Empty(t, f.store.Records())
	assert.Empty(t, f.cache.Info(ctx).Keys)
}

func TestValidate(t *testing.T) {
	res := Validate([]byte(`[1,2]`))
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"数据格式不正确"}, res.Errors)

	res = Validate([]byte(`{"records":[
		{"id":"a","startTime":5000,"endTime":1000,"duration":-1,"color":"purple","status":"normal","shape":"banana","amount":"small"},
		{"startTime":1000,"endTime":2000,"duration":1,"color":"brown","status":"normal","shape":"banana","amount":"small"}
	]}`))
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "记录 1 时长不能为负数")
	assert.Contains(t, res.Errors, "记录 1 开始时间不能晚于结束时间")
	assert.Contains(t, res.Errors, "记录 1 颜色无效: purple")
	assert.Contains(t, res.Errors, "记录 2 缺少字段: id")

	assert.True(t, Validate([]byte(`{"lastRecordTime":1}`)).IsValid)
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	var buf bytes.Buffer
	require.NoError(t, f.manager.ExportXLSX(&buf, time.UTC))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(recordSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, xlsxHeaders, rows[0])
	assert.Equal(t, "42", rows[1][2])
	assert.Equal(t, "brown", rows[1][3])
	assert.Equal(t, "2024-06-01 10:00:00", rows[1][1])
}

func TestExportYAML(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 15)

	var buf bytes.Buffer
	require.NoError(t, f.manager.ExportYAML(context.Background(), &buf))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	records, ok := doc["records"].([]any)
	require.True(t, ok)
	assert.Len(t, records, 1)
	assert.Contains(t, doc, "lastRecordTime")
}

func TestPushPullLatest(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t, 10)
	first, err := src.manager.Push(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "backups/u1/20240601-110000.json", first)

	src.seed(t, 20)
	second, err := src.manager.Push(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	dst := newFixture(t)
	dst.manager.artifacts = src.objects
	key, err := dst.manager.Pull(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, second, key)
	assert.Len(t, dst.store.Records(), 2)

	_, err = dst.manager.Pull(ctx, "nobody", "")
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPushWithoutStore(t *testing.T) {
	cache := localcache.New(localcache.NewMemoryBackend(nil), nil)
	m := New(cache, recordstore.New(cache))
	_, err := m.Push(context.Background(), "u1")
	require.ErrorIs(t, err, artifacts.ErrNotConfigured)
}
