package room

import (
	"time"

	"loft-chat/client/internal/presence"
	"loft-chat/client/internal/scroll"
	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

const (
	// MessagesElementID 是消息列表容器的 DOM 元素 ID，滚动指令都针对它。
	MessagesElementID = "messages"

	// OlderPageLimit 是向上翻页每次请求的条数。
	OlderPageLimit = 20
)

// Model 是单个房间视图的全部状态。
// 所有权：Model 独占其 Connection 与在场状态，所有变更都必须经过
// Update / Consume 入口在串行消息循环里发生，视图层只读。
type Model struct {
	Viewer    model.User
	Space     model.Space
	Room      model.Room
	Bookmarks []model.Bookmark
	Messages  connection.Connection[model.Message]

	// 输入框状态
	ComposerBody string
	IsSubmitting bool
	SubmitErrors []model.FieldError

	// 向上翻页守卫：请求发出到响应/失败之间为 true，防止并发重复翻页。
	IsFetchingOlder bool

	// 由服务端时钟初始化、由 Tick 驱动刷新的墙钟。
	Now time.Time

	// 最近一次已知的滚动位置；视图挂载后第一次采样前为 nil。
	LastScroll *scroll.Position

	// 在场状态机（NotLoaded -> Loaded），topic 与本房间绑定。
	Presence *presence.Tracker
}

// newModel 从合并初始化查询的结果构造模型。
func newModel(boot model.RoomBootstrap) *Model {
	return &Model{
		Viewer:    boot.Viewer,
		Space:     boot.Space,
		Room:      boot.Room,
		Bookmarks: boot.Bookmarks,
		Messages:  boot.Messages,
		Now:       boot.Now,
		Presence:  presence.NewTracker(presence.TopicForRoom(boot.Room.ID)),
	}
}
