package model

import (
	"time"

	"loft-chat/internal/connection"
)

// User 是一个可见的参与者身份（viewer、消息作者、在场名单成员）。
type User struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

// NodeID 返回稳定 ID，让 User 可以进入 Connection / 在场名单去重。
func (u User) NodeID() string { return u.ID }

// Space 是一个团队组织，房间都挂在某个 Space 下。
type Space struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Room 是一个会话房间（频道）。
type Room struct {
	ID      string `json:"id"`
	SpaceID string `json:"space_id"`
	Name    string `json:"name"`
	Purpose string `json:"purpose,omitempty"`
}

// NodeID 返回稳定 ID。
func (r Room) NodeID() string { return r.ID }

// Message 是房间中的一条消息。
// ClientID 由提交端生成（UUID），服务端用它做幂等去重：同一次提交重试不会产生两条消息。
type Message struct {
	ID       string    `json:"id"`
	ClientID string    `json:"client_id,omitempty"`
	RoomID   string    `json:"room_id"`
	Author   User      `json:"author"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
}

// NodeID 返回稳定 ID。
func (m Message) NodeID() string { return m.ID }

// Bookmark 是 viewer 收藏的房间（侧栏辅助列表），按 RoomID 去重。
type Bookmark struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
}

// RoomBootstrap 是房间页初始化的合并查询结果：
// viewer、space、room、书签列表、最近一页消息、服务端时钟，一次请求全部返回。
// 约定：任何一部分取不到则整个请求失败，不会返回残缺模型。
type RoomBootstrap struct {
	Viewer    User                           `json:"viewer"`
	Space     Space                          `json:"space"`
	Room      Room                           `json:"room"`
	Bookmarks []Bookmark                     `json:"bookmarks"`
	Messages  connection.Connection[Message] `json:"messages"`
	Now       time.Time                      `json:"now"`
}

// MessagePage 是向上翻页（取更早消息）的响应。
type MessagePage struct {
	Edges    []connection.Edge[Message] `json:"edges"`
	PageInfo connection.PageInfo        `json:"page_info"`
}

// SubmitRequest 是提交消息的请求体。
type SubmitRequest struct {
	ClientID string `json:"client_id"`
	Body     string `json:"body"`
}

// RecordViewRequest 标记 viewer 看到了哪条消息（last-read 标记）。
// LastReadID 为空指针表示房间当前没有任何消息。
type RecordViewRequest struct {
	LastReadID *string `json:"last_read_id,omitempty"`
}

// FieldError 是提交被拒绝时返回的字段级错误，客户端原样透传给渲染层。
type FieldError struct {
	Attribute string `json:"attribute"`
	Message   string `json:"message"`
}

// LoginRequest / LoginResponse 是会话签发接口的请求与响应。
type LoginRequest struct {
	Handle string `json:"handle"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Viewer User   `json:"viewer"`
}
