// 文件路径: internal/client/remote/remote.go
// 模块说明: 客户端对服务端 REST 接口的薄封装，所有请求都经过 transport.Client。
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lababa/lababa/internal/client/transport"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

// ListLimit 同步全部记录时每页请求的条数。
const ListLimit = 1000

// Client 服务端接口集合。
type Client struct {
	http *transport.Client
}

// New 包装已配置好的 transport.Client。
func New(http *transport.Client) *Client {
	return &Client{http: http}
}

// Page 列表接口返回的分页结果。
type Page struct {
	Total int             `json:"total"`
	Items []record.Record `json:"items"`
}

// IndexPage 首页接口：分页结果加汇总。
type IndexPage struct {
	Total   int             `json:"total"`
	Items   []record.Record `json:"items"`
	Summary stats.Summary   `json:"summary"`
}

// Session 登录结果。
type Session struct {
	User      record.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
}

type recordEnvelope struct {
	Record record.Record `json:"record"`
}

func filterParams(f stats.Filter, offset, limit int) map[string]any {
	params := map[string]any{}
	if f.UserID != "" {
		params["userId"] = f.UserID
	}
	if f.Start != nil {
		params["start"] = *f.Start
	}
	if f.End != nil {
		params["end"] = *f.End
	}
	if offset > 0 {
		params["offset"] = offset
	}
	if limit > 0 {
		params["limit"] = limit
	}
	return params
}

// List 按页拉取过滤后的全部记录，直到取满 total 或服务端返回空页。
func (c *Client) List(ctx context.Context, f stats.Filter) ([]record.Record, error) {
	items := []record.Record{}
	for {
		page, err := c.ListPage(ctx, f, len(items), ListLimit)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.Items) == 0 || len(items) >= page.Total {
			return items, nil
		}
	}
}

// ListPage 调用 /api/records/list，过滤条件放在请求体中。
func (c *Client) ListPage(ctx context.Context, f stats.Filter, offset, limit int) (Page, error) {
	var page Page
	if err := c.http.Get(ctx, "/api/records/list", filterParams(f, offset, limit), &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Index 调用 /api/index/list。
func (c *Client) Index(ctx context.Context, f stats.Filter, offset, limit int) (IndexPage, error) {
	var page IndexPage
	if err := c.http.Get(ctx, "/api/index/list", filterParams(f, offset, limit), &page); err != nil {
		return IndexPage{}, err
	}
	return page, nil
}

// Detail 查询单条记录。
func (c *Client) Detail(ctx context.Context, id string) (record.Record, error) {
	var out recordEnvelope
	if err := c.http.Get(ctx, "/api/records/detail/"+url.PathEscape(id), nil, &out); err != nil {
		return record.Record{}, err
	}
	return out.Record, nil
}

// Create 提交新记录，服务端会重新分配 id。
func (c *Client) Create(ctx context.Context, d record.Draft) (record.Record, error) {
	var out recordEnvelope
	if err := c.http.Post(ctx, "/api/records/create", d, &out); err != nil {
		return record.Record{}, err
	}
	if out.Record.ID == "" {
		return record.Record{}, fmt.Errorf("create record: empty response / 响应缺少记录")
	}
	return out.Record, nil
}

// Update 提交部分字段。
func (c *Client) Update(ctx context.Context, id string, p record.Patch) (record.Record, error) {
	var out recordEnvelope
	if err := c.http.Put(ctx, "/api/records/update/"+url.PathEscape(id), p, &out); err != nil {
		return record.Record{}, err
	}
	return out.Record, nil
}

// Delete 删除并返回被删除的记录。
func (c *Client) Delete(ctx context.Context, id string) (record.Record, error) {
	var out recordEnvelope
	if err := c.http.Delete(ctx, "/api/records/delete/"+url.PathEscape(id), nil, &out); err != nil {
		return record.Record{}, err
	}
	return out.Record, nil
}

// Summary 调用 /api/statistics/summary。
func (c *Client) Summary(ctx context.Context, f stats.Filter) (stats.Summary, error) {
	var out struct {
		Summary stats.Summary `json:"summary"`
	}
	if err := c.http.Get(ctx, "/api/statistics/summary", filterParams(f, 0, 0), &out); err != nil {
		return stats.Summary{}, err
	}
	return out.Summary, nil
}

// Ranking 调用 /api/ranking/list；路径以 list 结尾，因此以 POST 发送。
func (c *Client) Ranking(ctx context.Context, p stats.Period) ([]stats.RankingEntry, error) {
	var out struct {
		List []stats.RankingEntry `json:"list"`
	}
	if err := c.http.Get(ctx, "/api/ranking/list", map[string]any{"period": string(p)}, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// Login 用小程序 code 登录；响应头中的 token 由 transport 写回 TokenSink。
func (c *Client) Login(ctx context.Context, code, nickName, avatarURL string) (Session, error) {
	body := map[string]string{"code": code}
	if nickName != "" {
		body["nickName"] = nickName
	}
	if avatarURL != "" {
		body["avatarUrl"] = avatarURL
	}
	var out Session
	if err := c.http.Post(ctx, "/api/auth/weapp", body, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// Logout 注销服务端会话。/api/auth/ 默认是公开路径，这里显式要求携带令牌。
func (c *Client) Logout(ctx context.Context) error {
	requireAuth := true
	return c.http.Do(ctx, transport.Request{
		Path:        "/api/auth/logout",
		Method:      http.MethodPost,
		RequireAuth: &requireAuth,
	}, nil)
}

// User 查询用户资料（公开接口）。
func (c *Client) User(ctx context.Context, id string) (record.User, error) {
	var out struct {
		User record.User `json:"user"`
	}
	if err := c.http.Get(ctx, "/api/users/detail/"+url.PathEscape(id), nil, &out); err != nil {
		return record.User{}, err
	}
	return out.User, nil
}
