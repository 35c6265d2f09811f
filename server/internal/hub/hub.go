package hub

import (
	"log"
	"sync"

	"loft-chat/internal/model"
)

// Sink 是 hub 对单个推送连接的最小依赖：序列化并发送一帧。
// 由 API 层的 websocket 连接实现；测试用假实现。
type Sink interface {
	SendFrame(frame model.PushFrame) error
}

type client struct {
	user   model.User
	sink   Sink
	topics map[string]struct{}
}

// Hub 管理所有推送连接与 topic 订阅。
// 核心职责：
// 1. 连接注册/注销，注销时顺带退订其全部 topic
// 2. topic 的 join/leave，在场集合变化时向全员广播完整快照
// 3. 实体事件按 topic 广播、书签变更按用户定向推送
type Hub struct {
	mu      sync.RWMutex
	clients map[Sink]*client

	logger *log.Logger
}

func New(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients: make(map[Sink]*client),
		logger:  logger,
	}
}

// Register 登记一条新的推送连接。
func (h *Hub) Register(user model.User, sink Sink) {
	h.mu.Lock()
	h.clients[sink] = &client{
		user:   user,
		sink:   sink,
		topics: make(map[string]struct{}),
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Printf("[Hub] registered %s (connections=%d)", user.Handle, total)
}

// Unregister 注销连接并退订其全部 topic，受影响的 topic 重播在场快照。
// 连接读循环退出时必须调用（defer 保证）。
func (h *Hub) Unregister(sink Sink) {
	h.mu.Lock()
	c, ok := h.clients[sink]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, sink)
	affected := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		affected = append(affected, topic)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Printf("[Hub] unregistered %s (connections=%d)", c.user.Handle, total)
	for _, topic := range affected {
		h.broadcastPresence(topic)
	}
}

// Join 把连接订阅到 topic，并向该 topic 全员广播新的在场快照。
func (h *Hub) Join(sink Sink, topic string) {
	h.mu.Lock()
	c, ok := h.clients[sink]
	if !ok {
		h.mu.Unlock()
		return
	}
	c.topics[topic] = struct{}{}
	h.mu.Unlock()

	h.logger.Printf("[Hub] %s joined %s", c.user.Handle, topic)
	h.broadcastPresence(topic)
}

// Leave 把连接从 topic 退订，并向剩余成员广播新的在场快照。
func (h *Hub) Leave(sink Sink, topic string) {
	h.mu.Lock()
	c, ok := h.clients[sink]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(c.topics, topic)
	h.mu.Unlock()

	h.logger.Printf("[Hub] %s left %s", c.user.Handle, topic)
	h.broadcastPresence(topic)
}

// members 汇总 topic 当前的在场用户（同一用户的多条连接只算一次）。
func (h *Hub) members(topic string) []model.User {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []model.User
	for _, c := range h.clients {
		if _, ok := c.topics[topic]; !ok {
			continue
		}
		if _, dup := seen[c.user.ID]; dup {
			continue
		}
		seen[c.user.ID] = struct{}{}
		out = append(out, c.user)
	}
	return out
}

// broadcastPresence 向 topic 的全部订阅者推送完整在场快照。
// 推快照而不推增量：客户端整体替换，不需要做差分合并。
func (h *Hub) broadcastPresence(topic string) {
	frame := model.PushFrame{
		Type:    model.FramePresenceState,
		Topic:   topic,
		Members: h.members(topic),
	}
	h.BroadcastTopic(topic, frame)
}

// BroadcastTopic 把一帧送给 topic 的全部订阅者。发送失败只记日志，
// 失败的连接由它自己的读循环负责注销。
func (h *Hub) BroadcastTopic(topic string, frame model.PushFrame) {
	h.mu.RLock()
	var sinks []Sink
	for s, c := range h.clients {
		if _, ok := c.topics[topic]; ok {
			sinks = append(sinks, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range sinks {
		if err := s.SendFrame(frame); err != nil {
			h.logger.Printf("[Hub] ⚠️  send to subscriber of %s failed: %v", topic, err)
		}
	}
}

// SendToUser 把一帧定向推给某用户的全部连接（书签等个人事件）。
func (h *Hub) SendToUser(userID string, frame model.PushFrame) {
	h.mu.RLock()
	var sinks []Sink
	for s, c := range h.clients {
		if c.user.ID == userID {
			sinks = append(sinks, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range sinks {
		if err := s.SendFrame(frame); err != nil {
			h.logger.Printf("[Hub] ⚠️  send to user %s failed: %v", userID, err)
		}
	}
}
