package api

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"loft-chat/internal/model"
)

const socketWriteTimeout = 10 * time.Second

// socketConn 包装一条推送连接并实现 hub.Sink。
// 写操作持锁：gorilla 连接不允许并发写，而 hub 的广播来自任意请求 goroutine。
type socketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *socketConn) SendFrame(frame model.PushFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	_ = sc.conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
	return sc.conn.WriteMessage(websocket.TextMessage, data)
}

// handleSocket 处理 /api/socket：升级为 WebSocket 后进入帧读循环。
// 客户端在这条连接上发 join/leave 帧管理订阅，服务端推事件与在场快照。
func (s *Server) handleSocket(c *gin.Context) {
	user := viewer(c)
	log.Printf("[API] 📞 socket connection request from %s (%s)", user.Handle, c.Request.RemoteAddr)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[API] ❌ failed to upgrade websocket: %v", err)
		return
	}

	// 客户端按 ping_interval 保活；超过两个周期没有任何读活动视为死连接。
	if s.config.Socket.PingInterval > 0 {
		liveness := 2 * s.config.Socket.PingInterval
		_ = conn.SetReadDeadline(time.Now().Add(liveness))
		conn.SetPingHandler(func(appData string) error {
			_ = conn.SetReadDeadline(time.Now().Add(liveness))
			return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(socketWriteTimeout))
		})
	}

	sc := &socketConn{conn: conn}
	s.hub.Register(user, sc)

	// 读循环退出即注销：订阅随连接消亡，在场快照自动收缩。
	defer func() {
		s.hub.Unregister(sc)
		_ = conn.Close()
		log.Printf("[API] 🔌 socket closed for %s", user.Handle)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[API] socket read failed for %s: %v", user.Handle, err)
			}
			return
		}

		var frame model.PushFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("[API] ⚠️  dropping undecodable frame from %s: %v", user.Handle, err)
			continue
		}

		switch frame.Type {
		case model.FrameJoin:
			if frame.Topic == "" {
				continue
			}
			s.hub.Join(sc, frame.Topic)
		case model.FrameLeave:
			if frame.Topic == "" {
				continue
			}
			s.hub.Leave(sc, frame.Topic)
		default:
			log.Printf("[API] unhandled client frame type: %s", frame.Type)
		}
	}
}
