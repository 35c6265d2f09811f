package room

import (
	"errors"

	"github.com/google/uuid"

	"loft-chat/client/internal/api"
	"loft-chat/client/internal/scroll"
	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

// Update 是房间视图的归约入口：对一条消息做一次状态转移，返回待执行指令。
// 契约：
// - 每个分支都必须留下一个完整可用的模型，不做半截更新。
// - 并发在途请求的完成顺序没有保证，任何分支都不能假设另一个请求已经结束。
// - 会话过期从任何异步响应到达时都短路为跳转登录，不再更新模型状态。
func Update(m *Model, msg Msg) []Command {
	switch msg := msg.(type) {
	case BodyChanged:
		m.ComposerBody = msg.Body
		return nil

	case ComposerKeyDown:
		if msg.Key != "Enter" {
			return nil
		}
		if msg.Shift {
			m.ComposerBody += "\n"
			return nil
		}
		return Update(m, SubmitClicked{})

	case SubmitClicked:
		// 守卫：空文本或已有提交在途时不发起第二次提交。
		if IsSendDisabled(m) {
			return nil
		}
		m.IsSubmitting = true
		m.SubmitErrors = nil
		return []Command{SubmitCmd{
			SpaceID: m.Space.ID,
			RoomID:  m.Room.ID,
			Req:     model.SubmitRequest{ClientID: uuid.NewString(), Body: m.ComposerBody},
		}}

	case SubmitResponded:
		if errors.Is(msg.Err, api.ErrSessionExpired) {
			return []Command{RedirectToLoginCmd{}}
		}
		// 无论成败，在途标志恰好清除一次。
		m.IsSubmitting = false
		if msg.Err != nil {
			// 失败保留用户输入以便重试；校验错误原样透传给渲染层。
			var verr *api.ValidationError
			if errors.As(msg.Err, &verr) {
				m.SubmitErrors = verr.Errors
			}
			return nil
		}
		// 成功：清空输入框。响应里的消息体被有意丢弃，
		// 新消息统一走推送回声进入 Connection，created-handler 的幂等去重
		// 保证两条路径先后到达都不会产生副本。
		m.ComposerBody = ""
		return nil

	case Tick:
		m.Now = msg.Now
		return nil

	case ScrollTick:
		return []Command{RequestScrollPositionCmd{ElementID: MessagesElementID}}

	case ScrollPositionReceived:
		pos := msg.Pos
		m.LastScroll = &pos
		if !scroll.ShouldFetchOlder(m.LastScroll, m.Messages.PageInfo.HasNextPage, m.IsFetchingOlder) {
			return nil
		}
		if m.Messages.PageInfo.EndCursor == nil {
			return nil
		}
		m.IsFetchingOlder = true
		return []Command{FetchOlderCmd{
			SpaceID: m.Space.ID,
			RoomID:  m.Room.ID,
			Before:  *m.Messages.PageInfo.EndCursor,
			Limit:   OlderPageLimit,
		}}

	case OlderFetched:
		if errors.Is(msg.Err, api.ErrSessionExpired) {
			return []Command{RedirectToLoginCmd{}}
		}
		if errors.Is(msg.Err, api.ErrNotFound) {
			// 游标已走到尽头：不是错误，是“没有更多数据”的终态。
			m.IsFetchingOlder = false
			m.Messages.PageInfo.HasNextPage = false
			return nil
		}
		if msg.Err != nil {
			m.IsFetchingOlder = false
			return nil
		}
		// 记住插入前最顶端的条目，翻页完成后把视口锚回它。
		var anchorID string
		if len(m.Messages.Edges) > 0 {
			anchorID = m.Messages.Edges[0].Node.NodeID()
		}
		offset := 0
		if m.LastScroll != nil {
			offset = m.LastScroll.OffsetFromTop
		}
		m.Messages = connection.PrependOlder(m.Messages, msg.Page.Edges, msg.Page.PageInfo)
		m.IsFetchingOlder = false
		if anchorID == "" {
			return nil
		}
		return []Command{ScrollToAnchorCmd{
			ElementID: MessagesElementID,
			AnchorID:  anchorID,
			Offset:    offset,
		}}

	case ViewRecorded:
		if errors.Is(msg.Err, api.ErrSessionExpired) {
			return []Command{RedirectToLoginCmd{}}
		}
		// 其余失败静默吸收：last-read 上报没有可见后果。
		return nil

	case PresenceReceived:
		m.Presence.Receive(msg.Topic, msg.Members)
		return nil

	case PushReceived:
		return Consume(m, msg.Event)

	default:
		return nil
	}
}
