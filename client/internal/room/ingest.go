package room

import (
	"loft-chat/client/internal/events"
	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

func bookmarkKey(b model.Bookmark) string { return b.RoomID }

// Consume 把一条带外推送事件折叠进模型。
// 契约：对事件联合类型是全函数——不认识或与当前视图无关的事件是 no-op；
// 同一事件重复投递必须幂等（推送通道不保证恰好一次）。
func Consume(m *Model, evt events.Event) []Command {
	switch evt := evt.(type) {
	case events.MessageCreated:
		if evt.Message.RoomID != m.Room.ID {
			return nil
		}
		return handleMessageCreated(m, evt)

	case events.MessageUpdated:
		if evt.Message.RoomID != m.Room.ID {
			return nil
		}
		m.Messages = connection.ReplaceNode(m.Messages, evt.Message)
		return nil

	case events.MessageDeleted:
		if evt.Message.RoomID != m.Room.ID {
			return nil
		}
		m.Messages = connection.RemoveNode(m.Messages, evt.Message.ID)
		return nil

	case events.RoomUpdated:
		if evt.Room.ID != m.Room.ID {
			return nil
		}
		m.Room = evt.Room
		return nil

	case events.BookmarkAdded:
		m.Bookmarks = connection.InsertUniqueBy(bookmarkKey, evt.Bookmark, m.Bookmarks)
		return nil

	case events.BookmarkRemoved:
		m.Bookmarks = connection.RemoveBy(bookmarkKey, evt.Bookmark, m.Bookmarks)
		return nil

	default:
		// 未识别的事件种类：模型原样返回。
		return nil
	}
}

// handleMessageCreated 是本会话的 created-handler。
// 幂等性：提交端会通过推送收到自己消息的回声，ID 已存在时不得重复插入。
// 实时追加总是滚到底部——它代表前台新到的内容，不做锚点恢复。
func handleMessageCreated(m *Model, evt events.MessageCreated) []Command {
	before := len(m.Messages.Edges)
	m.Messages = connection.AppendNode(m.Messages, evt.Message, evt.Cursor)
	if len(m.Messages.Edges) == before {
		return nil
	}
	return []Command{ScrollToBottomCmd{ElementID: MessagesElementID}}
}
