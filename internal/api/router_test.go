package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lababa/lababa/internal/api"
	"github.com/lababa/lababa/internal/auth/token"
	"github.com/lababa/lababa/internal/cache"
	"github.com/lababa/lababa/internal/client/remote"
	"github.com/lababa/lababa/internal/client/transport"
	"github.com/lababa/lababa/internal/config"
	"github.com/lababa/lababa/internal/migrations"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/repository/sqlite"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/i18n"
)

// 周三上午，day/week/month 周期都不会跨界。
var fixedNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "api.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db, migrations.SQLiteSet))
	store := sqlite.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })

	clock := stats.Clock(func() time.Time { return fixedNow })
	mgr, err := token.NewManager(token.Options{SigningKey: []byte("router-test")})
	require.NoError(t, err)
	messages, err := i18n.NewManager()
	require.NoError(t, err)

	ranking := service.NewRankingService(store.Records(), cache.NewStore(cache.Options{}), time.Minute, clock, nil)
	services := api.Services{
		Auth:       service.NewAuthService(store.Users(), store.Sessions(), mgr, clock, nil),
		User:       service.NewUserService(store.Users()),
		Record:     service.NewRecordService(store.Records(), clock, ranking.Invalidate),
		Statistics: service.NewStatisticsService(store.Records(), clock),
		Ranking:    ranking,
		Friend:     service.NewFriendService(store.Friends(), clock),
		I18n:       messages,
	}
	router := api.NewRouter(nil, services, config.MetricsConfig{Enabled: true},
		api.WithRegistry(prometheus.NewRegistry()),
		api.WithClock(clock),
		api.WithHealth(nil, db.PingContext),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, tok string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeEnvelope(t *testing.T, raw []byte, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func login(t *testing.T, srv *httptest.Server, code string) (string, record.User) {
	t.Helper()
	resp, raw := call(t, srv, http.MethodPost, "/api/auth/weapp", "", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		User      record.User `json:"user"`
		Token     string      `json:"token"`
		ExpiresAt int64       `json:"expiresAt"`
	}
	decodeEnvelope(t, raw, &data)
	assert.Equal(t, "Bearer "+data.Token, resp.Header.Get("Authorization"))
	assert.Equal(t, data.Token, resp.Header.Get("X-Token"))
	assert.Equal(t, fixedNow.Add(7*24*time.Hour).UnixMilli(), data.ExpiresAt)
	return data.Token, data.User
}

func TestPublicEndpoints(t *testing.T) {
	srv := newServer(t)

	resp, raw := call(t, srv, http.MethodGet, "/api/health/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ping map[string]string
	env := decodeEnvelope(t, raw, &ping)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "成功", env.Msg)
	assert.Equal(t, "ok", ping["status"])

	resp, raw = call(t, srv, http.MethodGet, "/api/health/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"system"`)

	resp, raw = call(t, srv, http.MethodGet, "/api/records/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env = decodeEnvelope(t, raw, nil)
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "暂未登录", env.Msg)

	resp, raw = call(t, srv, http.MethodGet, "/api/users/detail/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not_found"}`, string(raw))

	resp, raw = call(t, srv, http.MethodGet, "/api/overview/personal", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"missing_userId"}`, string(raw))

	resp, raw = call(t, srv, http.MethodGet, "/api/overview/personal?userId=u1&period=total", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_period"}`, string(raw))

	resp, _ = call(t, srv, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = call(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "lababa_http_requests_total")
}

func TestRecordLifecycle(t *testing.T) {
	srv := newServer(t)
	alice, aliceUser := login(t, srv, "alice-code")
	bob, _ := login(t, srv, "bob-code")

	resp, raw := call(t, srv, http.MethodPost, "/api/records/create", alice, map[string]any{"duration": 90, "color": "yellow"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		Record record.Record `json:"record"`
	}
	decodeEnvelope(t, raw, &created)
	assert.Equal(t, aliceUser.ID, created.Record.UserID)
	assert.EqualValues(t, 90, created.Record.Duration)
	id := created.Record.ID

	resp, raw = call(t, srv, http.MethodPost, "/api/records/create", alice, map[string]any{"color": "purple"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 400, decodeEnvelope(t, raw, nil).Code)

	for i := 0; i < 2; i++ {
		resp, _ = call(t, srv, http.MethodPost, "/api/records/create", alice, map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var page struct {
		Total int             `json:"total"`
		Items []record.Record `json:"items"`
	}
	resp, raw = call(t, srv, http.MethodPost, "/api/records/list?limit=50", alice, map[string]any{"limit": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &page)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 1)

	resp, raw = call(t, srv, http.MethodGet, "/api/records/list", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &page)
	assert.Equal(t, 0, page.Total)

	resp, raw = call(t, srv, http.MethodGet, "/api/records/detail/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not_found"}`, string(raw))
	resp, _ = call(t, srv, http.MethodDelete, "/api/records/delete/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = call(t, srv, http.MethodPut, "/api/records/update/"+id, alice, map[string]any{"note": "ok", "userId": "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &created)
	assert.Equal(t, "ok", created.Record.Note)
	assert.Equal(t, aliceUser.ID, created.Record.UserID)

	var index struct {
		Total   int             `json:"total"`
		Items   []record.Record `json:"items"`
		Summary stats.Summary   `json:"summary"`
	}
	resp, raw = call(t, srv, http.MethodGet, "/api/index/list", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &index)
	assert.Equal(t, 3, index.Total)
	assert.EqualValues(t, 3, index.Summary.TotalRecords)
	assert.EqualValues(t, 300, index.Summary.LongestDuration)
	assert.EqualValues(t, 690, index.Summary.TotalDuration)

	var ranking struct {
		List []stats.RankingEntry `json:"list"`
	}
	resp, raw = call(t, srv, http.MethodGet, "/api/ranking/list?period=day", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &ranking)
	require.Len(t, ranking.List, 1)
	assert.Equal(t, aliceUser.ID, ranking.List[0].ID)
	assert.EqualValues(t, 3, ranking.List[0].TotalCount)

	resp, raw = call(t, srv, http.MethodGet, "/api/statistics/month-days", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month stats.MonthReport
	decodeEnvelope(t, raw, &month)
	assert.Equal(t, 3, month.TotalRecords)

	resp, raw = call(t, srv, http.MethodGet, "/api/overview/personal?userId="+aliceUser.ID+"&period=day", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ov stats.Overview
	decodeEnvelope(t, raw, &ov)
	assert.Equal(t, 3, ov.Count)
	assert.Equal(t, 100, ov.Score)

	resp, raw = call(t, srv, http.MethodDelete, "/api/records/delete/"+id, alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeEnvelope(t, raw, &created)
	assert.Equal(t, id, created.Record.ID)
}

func TestUsersAndFriends(t *testing.T) {
	srv := newServer(t)
	alice, aliceUser := login(t, srv, "alice-code")
	bob, bobUser := login(t, srv, "bob-code")

	resp, raw := call(t, srv, http.MethodPut, "/api/users/update/"+aliceUser.ID, bob, map[string]string{"nickName": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 403, decodeEnvelope(t, raw, nil).Code)

	resp, raw = call(t, srv, http.MethodPut, "/api/users/update/"+aliceUser.ID, alice, map[string]string{"nickName": "Alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user struct {
		User record.User `json:"user"`
	}
	decodeEnvelope(t, raw, &user)
	assert.Equal(t, "Alice", user.User.NickName)

	resp, raw = call(t, srv, http.MethodPost, "/api/friends/invite", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inviteID string
	decodeEnvelope(t, raw, &inviteID)
	require.NotEmpty(t, inviteID)

	resp, _ = call(t, srv, http.MethodPost, "/api/friends/accept", bob, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = call(t, srv, http.MethodPost, "/api/friends/accept", bob, map[string]string{"inviteId": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = call(t, srv, http.MethodPost, "/api/friends/accept", alice, map[string]string{"inviteId": inviteID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp, raw = call(t, srv, http.MethodPost, "/api/friends/accept", bob, map[string]string{"inviteId": inviteID})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var pair map[string]string
		decodeEnvelope(t, raw, &pair)
		assert.Equal(t, map[string]string{"inviterUserId": aliceUser.ID, "inviteeUserId": bobUser.ID}, pair)
	}
}

type tokenBox struct {
	mu  sync.Mutex
	tok string
}

func (b *tokenBox) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tok
}

func (b *tokenBox) SetToken(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tok = tok
}

func TestRemoteClientAgainstRouter(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	tokens := &tokenBox{}
	var events []transport.Event
	client := remote.New(transport.New(
		transport.Config{BaseURL: srv.URL},
		transport.WithTokenSource(tokens),
		transport.WithListener(func(e transport.Event) { events = append(events, e) }),
	))

	_, err := client.List(ctx, stats.Filter{})
	assert.ErrorIs(t, err, transport.ErrNoToken)

	session, err := client.Login(ctx, "remote-code", "客户端", "")
	require.NoError(t, err)
	assert.Equal(t, session.Token, tokens.Token())

	dur := int64(30)
	created, err := client.Create(ctx, record.Draft{Duration: &dur})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, created.UserID)

	list, err := client.List(ctx, stats.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	summary, err := client.Summary(ctx, stats.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.TotalRecords)

	ranking, err := client.Ranking(ctx, stats.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, ranking, 1)

	_, err = client.Detail(ctx, "missing")
	var httpErr *transport.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	tokens.SetToken("stale")
	_, err = client.List(ctx, stats.Filter{})
	assert.ErrorIs(t, err, transport.ErrUnauthorized)
	assert.NotEmpty(t, events)

	// 注销后同一个令牌不再可用。
	tokens.SetToken(session.Token)
	require.NoError(t, client.Logout(ctx))
	_, err = client.List(ctx, stats.Filter{})
	assert.ErrorIs(t, err, transport.ErrUnauthorized)
}

func TestLanguageNegotiation(t *testing.T) {
	srv := newServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health/ping", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "success", env.Msg)

	_, raw := call(t, srv, http.MethodGet, "/api/records/list?lang=en-US", "", nil)
	assert.Equal(t, "not logged in", decodeEnvelope(t, raw, nil).Msg)
}
