package presence

import "loft-chat/internal/model"

// TopicForRoom 由会话身份确定性地推导在场 topic 名。
func TopicForRoom(roomID string) string {
	return "rooms:" + roomID
}

// Tracker 是单个视图的在场状态机：NotLoaded -> Loaded(list)。
// 约定：
// - 只有 topic 与当前视图完全一致的快照才会被应用，
//   防止导航后迟到的旧会话快照污染新视图。
// - 视图挂载期间不会回到 NotLoaded；后续快照只是整体替换名单。
type Tracker struct {
	topic   string
	loaded  bool
	members []model.User
}

// NewTracker 创建处于 NotLoaded 状态的 Tracker。
func NewTracker(topic string) *Tracker {
	return &Tracker{topic: topic}
}

// Topic 返回该视图订阅的 topic 名。
func (t *Tracker) Topic() string { return t.topic }

// Receive 应用一份全量在场快照。
// 返回是否被应用：topic 不匹配时状态保持不变并返回 false。
func (t *Tracker) Receive(topic string, members []model.User) bool {
	if topic != t.topic {
		return false
	}
	copied := make([]model.User, len(members))
	copy(copied, members)
	t.members = copied
	t.loaded = true
	return true
}

// Loaded 报告是否已收到过首份快照（侧栏据此渲染 "Loading..." 占位）。
func (t *Tracker) Loaded() bool { return t.loaded }

// Members 返回当前在场名单的副本。NotLoaded 时返回 nil。
func (t *Tracker) Members() []model.User {
	if !t.loaded {
		return nil
	}
	out := make([]model.User, len(t.members))
	copy(out, t.members)
	return out
}
