package room

import "loft-chat/internal/model"

// Command 是 Update 返回的待执行副作用的封闭联合类型。
// 约定：reducer 只产出指令数据，真正的网络/DOM/socket 调用由运行时执行，
// 其结果再以 Msg 回到同一个串行循环。
type Command interface {
	isCommand()
}

// SubmitCmd 发送提交消息请求，结果以 SubmitResponded 回环。
type SubmitCmd struct {
	SpaceID string
	RoomID  string
	Req     model.SubmitRequest
}

// FetchOlderCmd 发送向上翻页请求，结果以 OlderFetched 回环。
type FetchOlderCmd struct {
	SpaceID string
	RoomID  string
	Before  string
	Limit   int
}

// RecordViewCmd 上报 last-read 标记，结果以 ViewRecorded 回环。
type RecordViewCmd struct {
	SpaceID    string
	RoomID     string
	LastReadID *string
}

// JoinTopicCmd / LeaveTopicCmd 管理推送通道上的 topic 订阅（含在场登记）。
type JoinTopicCmd struct {
	Topic string
}

type LeaveTopicCmd struct {
	Topic string
}

// RequestScrollPositionCmd 向 DOM 桥查询滚动位置，结果以 ScrollPositionReceived 回环。
type RequestScrollPositionCmd struct {
	ElementID string
}

// ScrollToAnchorCmd 把视口恢复到指定锚点条目（向上翻页后的视觉位置保持）。
type ScrollToAnchorCmd struct {
	ElementID string
	AnchorID  string
	Offset    int
}

// ScrollToBottomCmd 滚动到底部（实时新消息到达时）。
type ScrollToBottomCmd struct {
	ElementID string
}

// RedirectToLoginCmd 会话过期时跳转登录。唯一产生导航副作用的失败处理。
type RedirectToLoginCmd struct{}

func (SubmitCmd) isCommand()                {}
func (FetchOlderCmd) isCommand()            {}
func (RecordViewCmd) isCommand()            {}
func (JoinTopicCmd) isCommand()             {}
func (LeaveTopicCmd) isCommand()            {}
func (RequestScrollPositionCmd) isCommand() {}
func (ScrollToAnchorCmd) isCommand()        {}
func (ScrollToBottomCmd) isCommand()        {}
func (RedirectToLoginCmd) isCommand()       {}
