// Package transport 是访问远端服务的 HTTP 客户端：解析地址、按需附带 bearer token、
// 把状态码与响应信封映射为类型化错误，并在授权失败时发出登录事件。
// 这一层不做任何重试。
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout 单次请求的超时时间。
	DefaultTimeout = 15 * time.Second
	// DefaultServerMessage 信封缺少 msg 时使用的提示。
	DefaultServerMessage = "服务异常"
)

// DefaultPublicPaths 默认免鉴权路径：认证接口。
var DefaultPublicPaths = []*regexp.Regexp{regexp.MustCompile(`^/api/auth/`)}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// Config 在启动期构造并注入 Client。
type Config struct {
	BaseURL     string
	PublicPaths []*regexp.Regexp
	Timeout     time.Duration
}

// Request 一次调用的全部参数。RequireAuth 为 nil 时按公开路径表判断。
type Request struct {
	Path        string
	Method      string
	Body        any
	Query       url.Values
	Headers     map[string]string
	RequireAuth *bool
	Raw         bool
}

// Client 线程安全，可被多个 goroutine 共享。
type Client struct {
	baseURL     string
	publicPaths []*regexp.Regexp
	http        *http.Client
	tokens      TokenSource
	listener    Listener
	route       RouteFunc
	logger      *slog.Logger
}

// Option 配置 Client。
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试或自定义 Transport）。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource 设置 token 来源。
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithListener 订阅登录与失败事件。
func WithListener(l Listener) Option {
	return func(c *Client) { c.listener = l }
}

// WithRouteFunc 设置当前路由提供者。
func WithRouteFunc(fn RouteFunc) Option {
	return func(c *Client) { c.route = fn }
}

// WithLogger 设置日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建客户端。PublicPaths 为 nil 时使用 DefaultPublicPaths，Timeout <= 0 时使用 15s。
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	public := cfg.PublicPaths
	if public == nil {
		public = DefaultPublicPaths
	}
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		publicPaths: public,
		http:        &http.Client{Timeout: timeout},
		tokens:      StaticToken(""),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CompilePublicPaths 把配置中的正则字符串编译为模式列表。
func CompilePublicPaths(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		re, err := regexp.Compile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("compile public path %q: %w", trimmed, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Get 便捷读取；路径最后一段为 list 时改用 POST，参数放在请求体中。
func (c *Client) Get(ctx context.Context, path string, params map[string]any, out any) error {
	if isListPath(path) {
		return c.Do(ctx, Request{Path: path, Method: http.MethodPost, Body: params}, out)
	}
	return c.Do(ctx, Request{Path: path, Method: http.MethodGet, Query: toValues(params)}, out)
}

// Post 发送 JSON 请求体。
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, Request{Path: path, Method: http.MethodPost, Body: body}, out)
}

// Put 发送 JSON 请求体。
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, Request{Path: path, Method: http.MethodPut, Body: body}, out)
}

// Delete 参数放在查询串中。
func (c *Client) Delete(ctx context.Context, path string, params map[string]any, out any) error {
	return c.Do(ctx, Request{Path: path, Method: http.MethodDelete, Query: toValues(params)}, out)
}

// Do 执行请求。成功时把 data（Raw 模式下为整个信封，无信封时为原始响应体）解码到 out；
// out 可以是 *json.RawMessage 或 *[]byte 以拿到原始字节，也可以为 nil。
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range req.Headers {
		headers[k] = v
	}

	if c.requiresAuth(req) {
		token := c.tokens.Token()
		if token == "" {
			c.emit(Event{Kind: EventLoginPrompt, Route: c.currentRoute()})
			return ErrNoToken
		}
		if !hasHeader(headers, "Authorization") {
			headers["Authorization"] = "Bearer " + token
		}
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.Path, req.Query), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, req.Path)
		}
		c.logger.Debug("remote request failed", "method", method, "path", req.Path, "error", err)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, req.Path)
		}
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, raw)
	}
	c.captureToken(resp.Header)

	env, ok := parseEnvelope(raw)
	if !ok {
		return decodeInto(raw, out)
	}
	switch env.Code {
	case 0:
		if req.Raw {
			return decodeInto(raw, out)
		}
		return decodeInto(env.Data, out)
	case http.StatusUnauthorized:
		c.emit(Event{Kind: EventAuthRequired, Route: c.currentRoute(), Status: env.Code, Message: env.Message})
		return ErrUnauthorized
	default:
		msg := env.Message
		if msg == "" {
			msg = DefaultServerMessage
		}
		c.emit(Event{Kind: EventFailure, Status: env.Code, Message: msg})
		return &ServerError{Code: env.Code, Message: msg}
	}
}

func (c *Client) statusError(status int, raw []byte) error {
	c.logger.Debug("remote request rejected", "status", status)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.emit(Event{Kind: EventAuthRequired, Route: c.currentRoute(), Status: status})
		return ErrUnauthorized
	}
	c.emit(Event{Kind: EventFailure, Status: status, Message: "请求失败"})
	return &HTTPError{Status: status, Body: string(raw)}
}

func (c *Client) requiresAuth(req Request) bool {
	if req.RequireAuth != nil {
		return *req.RequireAuth
	}
	for _, re := range c.publicPaths {
		if re.MatchString(req.Path) {
			return false
		}
	}
	return true
}

func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !schemePattern.MatchString(path) {
		target = c.baseURL + path
	}
	if len(query) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + query.Encode()
}

func (c *Client) captureToken(h http.Header) {
	sink, ok := c.tokens.(TokenSink)
	if !ok {
		return
	}
	token := strings.TrimSpace(h.Get("X-Token"))
	if token == "" {
		if auth := strings.TrimSpace(h.Get("Authorization")); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			token = strings.TrimSpace(auth[7:])
		}
	}
	if token != "" {
		sink.SetToken(token)
	}
}

func (c *Client) emit(ev Event) {
	if c.listener == nil {
		return
	}
	c.listener(ev)
}

func (c *Client) currentRoute() string {
	if c.route == nil {
		return ""
	}
	return c.route()
}

type envelope struct {
	Code    int
	Message string
	Data    json.RawMessage
}

// parseEnvelope 只有 JSON 对象且 code 为数字时才视为信封。
func parseEnvelope(raw []byte) (envelope, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return envelope{}, false
	}
	codeRaw, ok := fields["code"]
	if !ok {
		return envelope{}, false
	}
	var code json.Number
	if err := json.Unmarshal(codeRaw, &code); err != nil {
		return envelope{}, false
	}
	n, err := code.Float64()
	if err != nil {
		return envelope{}, false
	}
	env := envelope{Code: int(n), Data: fields["data"]}
	if msg, ok := fields["msg"]; ok {
		_ = json.Unmarshal(msg, &env.Message)
	}
	return env, true
}

func decodeInto(raw []byte, out any) error {
	switch dst := out.(type) {
	case nil:
		return nil
	case *json.RawMessage:
		*dst = append((*dst)[:0], raw...)
		return nil
	case *[]byte:
		*dst = append((*dst)[:0], raw...)
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isListPath(path string) bool {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.HasSuffix(p, "/list")
}

func toValues(params map[string]any) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}
	return values
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
