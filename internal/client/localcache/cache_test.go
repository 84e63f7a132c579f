package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lababa/lababa/internal/migrations"
	"github.com/lababa/lababa/internal/record"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db, migrations.ClientSet))

	mr := miniredis.RunT(t)
	rb, err := NewRedisBackend(ctx, mr.Addr(), "test")
	require.NoError(t, err)

	out := map[string]Backend{
		"memory": NewMemoryBackend(nil),
		"sqlite": NewSQLiteBackend(db),
		"redis":  rb,
	}
	t.Cleanup(func() {
		for _, b := range out {
			_ = b.Close()
		}
	})
	return out
}

func sampleRecords() []record.Record {
	return []record.Record{
		{ID: "b", UserID: "u1", StartTime: 2000, EndTime: 62000, Duration: 60, Color: record.ColorBrown, Status: record.StatusNormal, Shape: record.ShapeBanana, Amount: record.AmountModerate, IsCompleted: true, CreatedAt: 62000},
		{ID: "a", UserID: "u1", StartTime: 1000, EndTime: 31000, Duration: 30, Color: record.ColorYellow, Status: record.StatusDiarrhea, Shape: record.ShapeWatery, Amount: record.AmountSmall, IsCompleted: true, CreatedAt: 31000},
	}
}

func TestManagerAcrossBackends(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := New(backend, nil)

			assert.Empty(t, m.Records(ctx))
			assert.Zero(t, m.LastRecordTime(ctx))

			require.True(t, m.SaveCollection(ctx, sampleRecords(), 62000))
			assert.Equal(t, sampleRecords(), m.Records(ctx))
			assert.EqualValues(t, 62000, m.LastRecordTime(ctx))

			require.True(t, m.SaveUserInfo(ctx, record.User{ID: "u1", NickName: "阿福"}))
			user, ok := m.UserInfo(ctx)
			require.True(t, ok)
			assert.Equal(t, "阿福", user.NickName)

			m.SetToken("tok-1")
			assert.Equal(t, "tok-1", m.Token())

			info := m.Info(ctx)
			assert.ElementsMatch(t, []string{KeyRecords, KeyLastRecordTime, KeyUserInfo, KeyAuthToken}, info.Keys)
			assert.Positive(t, info.Used)

			require.True(t, m.Remove(ctx, KeyAuthToken))
			assert.Empty(t, m.Token())

			require.True(t, m.Clear(ctx))
			assert.Empty(t, m.Records(ctx))
			assert.Empty(t, m.Info(ctx).Keys)
		})
	}
}

func TestGetKeepsDefaultOnCorruptValue(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	require.NoError(t, backend.SetMany(ctx, map[string][]byte{KeyRecords: []byte("{not json")}))

	m := New(backend, nil)
	assert.Empty(t, m.Records(ctx))

	fallback := 42
	assert.False(t, m.Get(ctx, KeyRecords, &fallback))
	assert.Equal(t, 42, fallback)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := New(NewMemoryBackend(nil), nil)
	require.True(t, src.SaveCollection(ctx, sampleRecords(), 62000))
	require.True(t, src.SaveUserInfo(ctx, record.User{ID: "u1", OpenID: "mock_abc"}))
	require.True(t, src.Set(ctx, KeySettings, map[string]any{"theme": "dark"}))

	data, ok := src.Backup(ctx)
	require.True(t, ok)
	assert.Contains(t, string(data), "\n  \"records\"")
	assert.NotContains(t, string(data), "currentRecord")

	dst := New(NewMemoryBackend(nil), nil)
	require.True(t, dst.Restore(ctx, data))
	assert.Equal(t, sampleRecords(), dst.Records(ctx))
	assert.EqualValues(t, 62000, dst.LastRecordTime(ctx))

	var settings map[string]string
	require.True(t, dst.Get(ctx, KeySettings, &settings))
	assert.Equal(t, "dark", settings["theme"])
}

func TestRestoreLeavesMissingFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend(nil), nil)
	require.True(t, m.SaveUserInfo(ctx, record.User{ID: "keep"}))

	doc, err := json.Marshal(map[string]any{"lastRecordTime": 99})
	require.NoError(t, err)
	require.True(t, m.Restore(ctx, doc))

	user, ok := m.UserInfo(ctx)
	require.True(t, ok)
	assert.Equal(t, "keep", user.ID)
	assert.EqualValues(t, 99, m.LastRecordTime(ctx))
}

func TestRestoreRejectsInvalidDocument(t *testing.T) {
	m := New(NewMemoryBackend(nil), nil)
	assert.False(t, m.Restore(context.Background(), []byte("[]x")))
}
