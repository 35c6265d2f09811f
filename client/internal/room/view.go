package room

import (
	"time"

	"loft-chat/client/internal/timeutil"
	"loft-chat/internal/model"
)

// IsSendDisabled 报告发送控件是否应当禁用：
// 输入框为空串，或已有一次提交在途。
func IsSendDisabled(m *Model) bool {
	return m.ComposerBody == "" || m.IsSubmitting
}

// PresenceSidebar 是“谁在这里”侧栏的派生视图。
// Loading 为 true 表示还没收到首份快照，渲染层显示 "Loading..." 占位。
type PresenceSidebar struct {
	Loading bool
	Members []model.User
}

// Sidebar 从在场状态派生侧栏视图。
func Sidebar(m *Model) PresenceSidebar {
	if !m.Presence.Loaded() {
		return PresenceSidebar{Loading: true}
	}
	return PresenceSidebar{Members: m.Presence.Members()}
}

// FormatPostedAt 按 viewer 所在时区渲染消息时间戳（12 小时制）。
func FormatPostedAt(m *Model, postedAt time.Time) string {
	return timeutil.FormatClock(postedAt.In(m.Now.Location()))
}
