package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lababa/lababa/internal/auth/token"
	"github.com/lababa/lababa/internal/cache"
	"github.com/lababa/lababa/internal/migrations"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository/sqlite"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// 2024-05-15 是星期三。
func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)}
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "service.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db, migrations.SQLiteSet))
	store := sqlite.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

func TestRecordServiceOwnership(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	clock := newClock()
	changes := 0
	svc := NewRecordService(store.Records(), clock.Now, func(context.Context) { changes++ })

	rec, err := svc.Create(ctx, "alice", record.Draft{Duration: ptr[int64](60), Note: "<b>ok</b>"})
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, "ok", rec.Note)
	assert.Equal(t, clock.now.UnixMilli(), rec.EndTime)

	explicit, err := svc.Create(ctx, "alice", record.Draft{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", explicit.UserID)

	anonymous, err := svc.Create(ctx, "", record.Draft{})
	require.NoError(t, err)
	assert.Equal(t, record.DefaultUserID, anonymous.UserID)

	_, err = svc.Create(ctx, "alice", record.Draft{Color: "purple"})
	assert.ErrorIs(t, err, record.ErrInvalidColor)
	assert.Equal(t, 3, changes)

	_, err = svc.Detail(ctx, "bob", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, "bob", rec.ID, record.Patch{Note: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Delete(ctx, "bob", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "alice", rec.ID, record.Patch{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := svc.Update(ctx, "alice", rec.ID, record.Patch{Status: ptr("diarrhea")})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "alice", updated.UserID)
	assert.Equal(t, record.StatusDiarrhea, updated.Status)

	deleted, err := svc.Delete(ctx, "alice", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, deleted.ID)
	_, err = svc.Detail(ctx, "alice", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 5, changes)
}

func TestRecordServiceListDefaults(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := NewRecordService(store.Records(), newClock().Now, nil)
	for i := 0; i < 60; i++ {
		_, err := svc.Create(ctx, "alice", record.Draft{Duration: ptr[int64](int64(i))})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "bob", record.Draft{})
	require.NoError(t, err)

	page, err := svc.List(ctx, RecordQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 60, page.Total)
	assert.Len(t, page.Items, DefaultListLimit)
	assert.EqualValues(t, 59, page.Items[0].Duration)

	page, err = svc.List(ctx, RecordQuery{UserID: "alice", Offset: 55, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	page, err = svc.List(ctx, RecordQuery{UserID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestRankingCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	clock := newClock()
	ranking := NewRankingService(store.Records(), cache.NewStore(cache.Options{}), time.Minute, clock.Now, nil)
	records := NewRecordService(store.Records(), clock.Now, ranking.Invalidate)

	for i := 0; i < 3; i++ {
		_, err := records.Create(ctx, "alice", record.Draft{Duration: ptr[int64](10)})
		require.NoError(t, err)
	}
	list, err := ranking.List(ctx, "week")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 3, list[0].TotalCount)
	assert.EqualValues(t, 30, list[0].TotalDuration)

	// 绕过服务直接写库，缓存仍返回旧结果。
	direct, err := record.Build(record.Draft{}, "bob", clock.now)
	require.NoError(t, err)
	require.NoError(t, store.Records().Create(ctx, &direct))
	list, err = ranking.List(ctx, "week")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	for i := 0; i < 5; i++ {
		_, err := records.Create(ctx, "bob", record.Draft{})
		require.NoError(t, err)
	}
	list, err = ranking.List(ctx, "week")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].ID)
	assert.EqualValues(t, 6, list[0].TotalCount)

	lastYear, err := record.Build(record.Draft{EndTime: ptr(clock.now.AddDate(-1, 0, 0).UnixMilli())}, "carol", clock.now)
	require.NoError(t, err)
	require.NoError(t, store.Records().Create(ctx, &lastYear))
	ranking.Invalidate(ctx)

	week, err := ranking.List(ctx, "week")
	require.NoError(t, err)
	assert.Len(t, week, 2)
	total, err := ranking.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, total, 3)
}

func TestStatisticsService(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	clock := newClock()
	records := NewRecordService(store.Records(), clock.Now, nil)
	statistics := NewStatisticsService(store.Records(), clock.Now)

	empty, err := statistics.Summary(ctx, RecordQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.Zero(t, empty.TotalRecords)
	assert.Zero(t, empty.AverageDuration)

	end := clock.now.UnixMilli()
	for _, d := range []int64{10, 20, 30} {
		_, err := records.Create(ctx, "alice", record.Draft{EndTime: ptr(end), Duration: ptr(d)})
		require.NoError(t, err)
	}
	_, err = records.Create(ctx, "alice", record.Draft{
		EndTime:  ptr(time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC).UnixMilli()),
		Duration: ptr[int64](5),
		Status:   "constipation",
		Color:    "yellow",
	})
	require.NoError(t, err)

	summary, err := statistics.Summary(ctx, RecordQuery{UserID: "alice", Start: ptr(end)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.TotalRecords)
	assert.EqualValues(t, 20, summary.AverageDuration)
	assert.EqualValues(t, 30, summary.LongestDuration)

	index, err := statistics.Index(ctx, RecordQuery{UserID: "alice", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, index.Total)
	assert.Len(t, index.Items, 2)
	assert.EqualValues(t, 4, index.Summary.TotalRecords)

	month, err := statistics.MonthDays(ctx, "alice", 2024, 5)
	require.NoError(t, err)
	require.Len(t, month.Days, 2)
	assert.Equal(t, "2024-05-02", month.Days[0].Date)
	assert.Equal(t, 1, month.Days[0].Constipation)
	assert.Equal(t, "2024-05-15", month.Days[1].Date)
	assert.Equal(t, 3, month.Days[1].Normal)
	assert.Equal(t, 4, month.TotalRecords)

	clamped, err := statistics.MonthDays(ctx, "alice", 2024, 13)
	require.NoError(t, err)
	assert.Equal(t, 12, clamped.Month)
	assert.Empty(t, clamped.Days)

	_, err = statistics.Overview(ctx, "", "week")
	assert.ErrorIs(t, err, ErrMissingUserID)
	_, err = statistics.Overview(ctx, "alice", "total")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = statistics.Overview(ctx, "alice", "fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	week, err := statistics.Overview(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, 3, week.Count)
	assert.Equal(t, 1, week.CheckInDays)
	assert.Equal(t, 100, week.Score)

	monthView, err := statistics.Overview(ctx, "alice", "MONTH")
	require.NoError(t, err)
	assert.Equal(t, 4, monthView.Count)
	assert.Equal(t, 2, monthView.CheckInDays)
	assert.Equal(t, 75, monthView.Score)
	assert.Equal(t, 1, monthView.Colors["yellow"])
}

func TestAuthServiceLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	clock := newClock()
	mgr, err := token.NewManager(token.Options{SigningKey: []byte("test-secret"), TTL: time.Hour, Now: clock.Now})
	require.NoError(t, err)
	auth := NewAuthService(store.Users(), store.Sessions(), mgr, clock.Now, nil)

	first, err := auth.WeappLogin(ctx, WeappLoginInput{Code: "0123456789abcdefXYZ", NickName: "小明"})
	require.NoError(t, err)
	assert.Equal(t, "mock_0123456789abcdef", first.User.OpenID)
	assert.Equal(t, "小明", first.User.NickName)
	assert.Equal(t, clock.now.Add(time.Hour).UnixMilli(), first.ExpiresAt)
	assert.NotEmpty(t, first.Token)

	second, err := auth.WeappLogin(ctx, WeappLoginInput{Code: "0123456789abcdef-other", AvatarURL: "https://a/b.png"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "小明", second.User.NickName)
	assert.Equal(t, "https://a/b.png", second.User.AvatarURL)

	claims, err := auth.Verify(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)

	_, err = auth.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, auth.Logout(ctx, claims.SessionID))
	_, err = auth.Verify(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = auth.Verify(ctx, second.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	removed, err := auth.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestMockOpenID(t *testing.T) {
	assert.Equal(t, "", MockOpenID(""))
	assert.Equal(t, "mock_abc", MockOpenID("abc"))
	assert.Equal(t, "mock_0123456789abcdef", MockOpenID("0123456789abcdefghij"))
}

func TestUserServiceUpdateSelfOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Users().Save(ctx, &record.User{ID: "u1", NickName: "old", AvatarURL: "a.png"}))
	users := NewUserService(store.Users())

	_, err := users.Detail(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.Update(ctx, "u2", "u1", UserUpdate{NickName: "hacker"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := users.Update(ctx, "u1", "u1", UserUpdate{NickName: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.NickName)
	assert.Equal(t, "a.png", updated.AvatarURL)

	got, err := users.Detail(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.NickName)
}

func TestFriendService(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	friends := NewFriendService(store.Friends(), newClock().Now)

	inviteID, err := friends.Invite(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, inviteID)

	_, err = friends.Accept(ctx, "bob", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = friends.Accept(ctx, "bob", "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = friends.Accept(ctx, "alice", inviteID)
	assert.ErrorIs(t, err, ErrSelfInvite)

	for i := 0; i < 2; i++ {
		pair, err := friends.Accept(ctx, "bob", inviteID)
		require.NoError(t, err)
		assert.Equal(t, &Friendship{InviterUserID: "alice", InviteeUserID: "bob"}, pair)
	}
	rels, err := friends.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}
