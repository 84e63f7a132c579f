package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken 需要鉴权但本地没有 token，请求不会发出。
	ErrNoToken = errors.New("transport: no token / 请先登录")
	// ErrUnauthorized 服务端返回 401/403，或信封 code 为 401。
	ErrUnauthorized = errors.New("transport: unauthorized / 未授权")
	// ErrTimeout 请求超过配置的超时时间。
	ErrTimeout = errors.New("transport: timeout / 请求超时")
)

// HTTPError 除 401/403 外的非 2xx 响应。
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("transport: http %d", e.Status)
}

// ServerError 2xx 响应但信封 code 非 0（且非 401）。
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("transport: server error %d: %s", e.Code, e.Message)
}

// Kind 错误分类，供调用方决定是否回退到本地缓存。
type Kind int

const (
	KindNone Kind = iota
	KindNoToken
	KindUnauthorized
	KindHTTP
	KindServer
	KindTimeout
	KindNetwork
)

// String returns the kind label used in logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoToken:
		return "no_token"
	case KindUnauthorized:
		return "unauthorized"
	case KindHTTP:
		return "http"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	default:
		return "network"
	}
}

// Classify 将任意错误归类。
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var httpErr *HTTPError
	var serverErr *ServerError
	switch {
	case errors.Is(err, ErrNoToken):
		return KindNoToken
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &serverErr):
		return KindServer
	default:
		return KindNetwork
	}
}

// IsAuthError 判断是否需要重新登录。
func IsAuthError(err error) bool {
	k := Classify(err)
	return k == KindNoToken || k == KindUnauthorized
}
