package model

// FrameType 定义了 socket 通道上传输的帧类型。
type FrameType string

const (
	// 客户端 -> 服务端
	FrameJoin  FrameType = "join"  // 订阅一个 topic（含在场登记）
	FrameLeave FrameType = "leave" // 退订一个 topic

	// 服务端 -> 客户端
	FramePresenceState   FrameType = "presence_state"   // 某 topic 的全量在场快照
	FrameMessageCreated  FrameType = "message_created"  // 新消息（含提交端自己的回声）
	FrameMessageUpdated  FrameType = "message_updated"  // 消息被编辑
	FrameMessageDeleted  FrameType = "message_deleted"  // 消息被删除
	FrameRoomUpdated     FrameType = "room_updated"     // 房间元数据变更
	FrameBookmarkAdded   FrameType = "bookmark_added"   // viewer 收藏了房间
	FrameBookmarkRemoved FrameType = "bookmark_removed" // viewer 取消收藏
)

// PushFrame 是 socket 通道上的一帧（WebSocket 文本帧，JSON 编码）。
// 约定：帧之间只有到达顺序，没有跨类型的先后保证；接收端必须幂等地应用每一帧。
type PushFrame struct {
	Type  FrameType `json:"type"`
	Topic string    `json:"topic,omitempty"`

	// FramePresenceState 携带的全量名单
	Members []User `json:"members,omitempty"`

	// 实体事件携带受影响实体的完整表示
	Message  *Message  `json:"message,omitempty"`
	Cursor   string    `json:"cursor,omitempty"`
	Room     *Room     `json:"room,omitempty"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}
