package room

import (
	"time"

	"loft-chat/client/internal/events"
	"loft-chat/client/internal/scroll"
	"loft-chat/internal/model"
)

// Msg 是进入房间视图消息循环的消息的封闭联合类型。
// 每条消息由 Update 的一个分支处理；异步操作的完成也以消息形式回到循环。
type Msg interface {
	isMsg()
}

// BodyChanged 输入框文本变化。
type BodyChanged struct {
	Body string
}

// ComposerKeyDown 输入框按键：Enter 提交，Shift+Enter 换行。
type ComposerKeyDown struct {
	Key   string
	Shift bool
}

// SubmitClicked 用户触发发送（点击或 Enter）。
type SubmitClicked struct{}

// SubmitResponded 提交请求的响应（成功或失败）。
type SubmitResponded struct {
	Message model.Message
	Err     error
}

// Tick 周期性时钟（约每秒一次），驱动墙钟刷新。
type Tick struct {
	Now time.Time
}

// ScrollTick 滚动位置轮询时钟（约每秒两次），触发一次 DOM 位置查询。
type ScrollTick struct{}

// ScrollPositionReceived DOM 桥回报的滚动位置。
type ScrollPositionReceived struct {
	Pos scroll.Position
}

// OlderFetched 向上翻页请求的响应。
type OlderFetched struct {
	Page model.MessagePage
	Err  error
}

// ViewRecorded last-read 上报的结果。非过期失败静默吸收。
type ViewRecorded struct {
	Err error
}

// PresenceReceived 推送通道送达的全量在场快照。
type PresenceReceived struct {
	Topic   string
	Members []model.User
}

// PushReceived 推送通道送达的实体生命周期事件。Event 为 nil 时是 no-op。
type PushReceived struct {
	Event events.Event
}

func (BodyChanged) isMsg()            {}
func (ComposerKeyDown) isMsg()        {}
func (SubmitClicked) isMsg()          {}
func (SubmitResponded) isMsg()        {}
func (Tick) isMsg()                   {}
func (ScrollTick) isMsg()             {}
func (ScrollPositionReceived) isMsg() {}
func (OlderFetched) isMsg()           {}
func (ViewRecorded) isMsg()           {}
func (PresenceReceived) isMsg()       {}
func (PushReceived) isMsg()           {}
