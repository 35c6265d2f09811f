package events

import "loft-chat/internal/model"

// Event 是推送通道送达的实体生命周期事件的封闭联合类型。
// 约定：事件之间只有到达顺序，可能重复投递；消费方必须幂等地应用每一个。
type Event interface {
	isEvent()
}

// MessageCreated 表示有新消息产生（包括提交端自己的回声）。
type MessageCreated struct {
	Message model.Message
	Cursor  string
}

// MessageUpdated 表示某条消息被编辑，携带完整的最新表示。
type MessageUpdated struct {
	Message model.Message
}

// MessageDeleted 表示某条消息被删除。
type MessageDeleted struct {
	Message model.Message
}

// RoomUpdated 表示房间元数据变更。
type RoomUpdated struct {
	Room model.Room
}

// BookmarkAdded / BookmarkRemoved 表示 viewer 的书签列表变化。
type BookmarkAdded struct {
	Bookmark model.Bookmark
}

type BookmarkRemoved struct {
	Bookmark model.Bookmark
}

func (MessageCreated) isEvent()  {}
func (MessageUpdated) isEvent()  {}
func (MessageDeleted) isEvent()  {}
func (RoomUpdated) isEvent()     {}
func (BookmarkAdded) isEvent()   {}
func (BookmarkRemoved) isEvent() {}

// FromFrame 把 wire 帧翻译为事件。
// 非实体事件帧（join/leave/presence_state）与无法识别的类型返回 nil，
// 调用方把 nil 当作 no-op——摄取函数对事件集合必须是全函数。
func FromFrame(f model.PushFrame) Event {
	switch f.Type {
	case model.FrameMessageCreated:
		if f.Message == nil {
			return nil
		}
		return MessageCreated{Message: *f.Message, Cursor: f.Cursor}
	case model.FrameMessageUpdated:
		if f.Message == nil {
			return nil
		}
		return MessageUpdated{Message: *f.Message}
	case model.FrameMessageDeleted:
		if f.Message == nil {
			return nil
		}
		return MessageDeleted{Message: *f.Message}
	case model.FrameRoomUpdated:
		if f.Room == nil {
			return nil
		}
		return RoomUpdated{Room: *f.Room}
	case model.FrameBookmarkAdded:
		if f.Bookmark == nil {
			return nil
		}
		return BookmarkAdded{Bookmark: *f.Bookmark}
	case model.FrameBookmarkRemoved:
		if f.Bookmark == nil {
			return nil
		}
		return BookmarkRemoved{Bookmark: *f.Bookmark}
	default:
		return nil
	}
}
