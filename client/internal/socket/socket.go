package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"loft-chat/internal/model"
)

// FrameHandler 消费推送通道上到达的每一帧。
// 在读循环的 goroutine 上被调用，实现方负责把帧转投到自己的串行循环。
type FrameHandler func(frame model.PushFrame)

const (
	handshakeTimeout = 15 * time.Second
	pingInterval     = 30 * time.Second
	writeTimeout     = 10 * time.Second
)

// Client 维护客户端与服务端之间的推送 WebSocket 连接。
// 职责：
// 1. 连接生命周期（拨号、ping 保活、关闭）
// 2. topic 的 join/leave 帧发送
// 3. 读循环：解码服务端推来的事件/在场快照帧并交给 handler
type Client struct {
	url     string
	token   string
	handler FrameHandler

	conn     *websocket.Conn
	connLock sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeChan chan struct{}

	logger *log.Logger
}

// Dial 建立推送连接。读循环直到 Start 才启动，
// 调用方先用 SetHandler 注入帧处理器（与消息循环接线）再 Start。
func Dial(ctx context.Context, url, token string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}

	headers := make(map[string][]string)
	headers["Authorization"] = []string{"Bearer " + token}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial socket: status=%d err=%w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial socket: %w", err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		url:       url,
		token:     token,
		conn:      conn,
		ctx:       cctx,
		cancel:    cancel,
		closeChan: make(chan struct{}),
		logger:    logger,
	}

	logger.Printf("[Socket] connected to %s", url)
	return c, nil
}

// SetHandler 注入帧处理器。必须在 Start 之前调用。
func (c *Client) SetHandler(handler FrameHandler) {
	c.handler = handler
}

// Start 启动读循环与 ping 保活。
func (c *Client) Start() {
	go c.readLoop()
	go c.pingLoop()
}

// Join 订阅一个 topic（服务端随之做在场登记并广播快照）。
func (c *Client) Join(topic string) error {
	return c.send(model.PushFrame{Type: model.FrameJoin, Topic: topic})
}

// Leave 退订一个 topic。
func (c *Client) Leave(topic string) error {
	return c.send(model.PushFrame{Type: model.FrameLeave, Topic: topic})
}

// send 序列化并发送一帧。写操作持锁：gorilla 连接不允许并发写。
func (c *Client) send(frame model.PushFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.conn == nil {
		return fmt.Errorf("socket closed")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readLoop 持续读取服务端推送并交给 handler；连接断开时关闭整个客户端。
func (c *Client) readLoop() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.connLock.Lock()
		conn := c.conn
		c.connLock.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				c.logger.Printf("[Socket] read failed: %v", err)
			}
			return
		}

		var frame model.PushFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// 无法解码的帧跳过，不中断通道。
			c.logger.Printf("[Socket] ⚠️  dropping undecodable frame: %v", err)
			continue
		}

		if c.handler != nil {
			c.handler(frame)
		}
	}
}

// pingLoop 周期发送 ping 保活。
func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.connLock.Lock()
			conn := c.conn
			if conn != nil {
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			}
			c.connLock.Unlock()
		}
	}
}

// Close 关闭推送连接。可重复调用。
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.closeChan)

		c.connLock.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.connLock.Unlock()

		c.logger.Printf("[Socket] closed")
	})
	return nil
}

// Done 返回一个在连接关闭时关闭的 channel。
func (c *Client) Done() <-chan struct{} {
	return c.closeChan
}
