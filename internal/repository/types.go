// 文件路径: internal/repository/types.go
// 模块说明: 仓储层专用的数据结构，记录与用户直接复用 record 包的领域类型。
package repository

// Session 一次登录会话，时间字段为毫秒。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt int64
	CreatedAt int64
}

// Expired 判断会话在 nowMillis 时是否已过期。
func (s Session) Expired(nowMillis int64) bool {
	return nowMillis >= s.ExpiresAt
}

// FriendInvite 好友邀请。
type FriendInvite struct {
	ID            string
	InviterUserID string
	CreatedAt     int64
}

// FriendRelation 邀请被接受后形成的关系。
type FriendRelation struct {
	ID            string
	InviterUserID string
	InviteeUserID string
	CreatedAt     int64
}

// RecordTotals 聚合查询结果。
type RecordTotals struct {
	Count   int64
	Total   int64
	Longest int64
}

// Setting 一条运行时设置，UpdatedAt 为秒。
type Setting struct {
	Key       string
	Value     string
	Category  string
	UpdatedAt int64
}
