package room

import (
	"context"

	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

// API 是控制器的查询/变更边界，由 HTTP 客户端实现。
// 控制器不关心传输细节，只依赖错误分类（过期/未找到/校验失败/一般失败）。
type API interface {
	RoomBootstrap(ctx context.Context, spaceID, roomID string) (model.RoomBootstrap, error)
	FetchOlderPage(ctx context.Context, spaceID, roomID, before string, limit int) (model.MessagePage, error)
	SubmitMessage(ctx context.Context, spaceID, roomID string, req model.SubmitRequest) (model.Message, error)
	RecordView(ctx context.Context, spaceID, roomID string, req model.RecordViewRequest) error
}

// Init 执行房间页的合并初始化：根实体 + 首页消息 + 辅助列表 + 服务端时钟，
// 作为一个整体成败——任何必需部分失败都不会把残缺模型交给视图层。
func Init(ctx context.Context, backend API, spaceID, roomID string) (*Model, error) {
	boot, err := backend.RoomBootstrap(ctx, spaceID, roomID)
	if err != nil {
		return nil, err
	}
	return newModel(boot), nil
}

// Setup 返回视图挂载后需要并发触发的指令：
// 上报 last-read（连接为空时省略标记）、加入在场 topic、滚动到底部。
// 这些指令彼此独立，完成顺序没有保证。
func Setup(m *Model) []Command {
	var lastRead *string
	if tail := connection.Last(1, m.Messages); len(tail) == 1 {
		id := tail[0].Node.NodeID()
		lastRead = &id
	}
	return []Command{
		RecordViewCmd{SpaceID: m.Space.ID, RoomID: m.Room.ID, LastReadID: lastRead},
		JoinTopicCmd{Topic: m.Presence.Topic()},
		ScrollToBottomCmd{ElementID: MessagesElementID},
	}
}

// Teardown 返回视图卸载时的指令：离开在场 topic。
// 必须在 setup 的异步效果尚未完成时也可以安全调用——
// 串行消息循环保证 leave 在 join 之后送出，不会泄漏已加入的通道。
func Teardown(m *Model) []Command {
	return []Command{LeaveTopicCmd{Topic: m.Presence.Topic()}}
}
