package transport

// EventKind 传输层发出的副作用事件类型，由 UI 层订阅处理。
type EventKind int

const (
	// EventLoginPrompt 本地没有 token，提示用户登录。
	EventLoginPrompt EventKind = iota + 1
	// EventAuthRequired 服务端拒绝授权，需要跳转登录并在登录后返回 Route。
	EventAuthRequired
	// EventFailure 通用失败通知。
	EventFailure
)

// Event 描述一次副作用。
type Event struct {
	Kind    EventKind
	Route   string
	Status  int
	Message string
}

// Listener 接收事件，在发起请求的 goroutine 中同步调用。
type Listener func(Event)

// RouteFunc 返回当前页面路由，用于登录后回跳。
type RouteFunc func() string

// TokenSource 提供当前 token，空字符串表示未登录。
type TokenSource interface {
	Token() string
}

// TokenSink 可选接口：登录响应头中带回的 token 会写回这里。
type TokenSink interface {
	SetToken(token string)
}

// StaticToken 固定 token，用于命令行与测试。
type StaticToken string

func (s StaticToken) Token() string { return string(s) }
