// 文件路径: internal/service/errors.go
// 模块说明: 服务层错误，HTTP 层据此映射状态码。
package service

import "errors"

var (
	// ErrNotFound indicates requested resource does not exist or belongs to someone else.
	ErrNotFound = errors.New("service: not found / 未找到资源")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized / 未授权")
	// ErrForbidden indicates the caller may not modify the target resource.
	ErrForbidden = errors.New("service: forbidden / 无权操作")
	// ErrInvalidArgument indicates a required input is missing or malformed.
	ErrInvalidArgument = errors.New("service: invalid argument / 参数无效")
	// ErrMissingUserID indicates a user scoped query without userId.
	ErrMissingUserID = errors.New("service: missing userId / 缺少 userId")
	// ErrInvalidPeriod indicates the overview period is not day/week/month/year.
	ErrInvalidPeriod = errors.New("service: invalid period / 周期无效")
	// ErrSelfInvite indicates a user tried to accept their own invite.
	ErrSelfInvite = errors.New("service: cannot accept own invite / 不能接受自己的邀请")
)
