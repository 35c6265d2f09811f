package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"loft-chat/internal/model"
	"loft-chat/server/internal/config"
	"loft-chat/server/internal/hub"
	"loft-chat/server/internal/session"
	"loft-chat/server/internal/store"
)

type Server struct {
	config   *config.Config
	sessions session.Store
	store    store.Store
	hub      *hub.Hub
	now      func() time.Time

	// WebSocket upgrader
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, sessions session.Store, st store.Store, h *hub.Hub) *Server {
	s := &Server{
		config:   cfg,
		sessions: sessions,
		store:    st,
		hub:      h,
		now:      time.Now,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

func (s *Server) Routes() http.Handler {
	// Gin 统一承载中间件与路由，便于扩展日志/鉴权/限流等能力。
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), s.corsMiddleware())

	engine.GET("/healthz", s.handleHealthz)
	engine.POST("/api/login", s.handleLogin)

	authed := engine.Group("/", s.authMiddleware())
	authed.GET("/api/spaces/:space/rooms/:room", s.handleRoomBootstrap)
	authed.GET("/api/spaces/:space/rooms/:room/messages", s.handleOlderMessages)
	authed.POST("/api/spaces/:space/rooms/:room/messages", s.handleSubmitMessage)
	authed.POST("/api/spaces/:space/rooms/:room/views", s.handleRecordView)
	authed.PUT("/api/spaces/:space/rooms/:room/bookmark", s.handleAddBookmark)
	authed.DELETE("/api/spaces/:space/rooms/:room/bookmark", s.handleRemoveBookmark)
	authed.GET("/api/socket", s.handleSocket)

	return engine
}

// roomTopic 是房间对应的推送 topic。客户端按同样规则订阅。
func roomTopic(roomID string) string {
	return "rooms:" + roomID
}

// handleHealthz 返回服务健康状态。
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleLogin 处理 /api/login 路由，按 handle 签发会话令牌。
// 演示环境不做口令校验，handle 即身份。
func (s *Server) handleLogin(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Handle) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []model.FieldError{
			{Attribute: "handle", Message: "is required"},
		}})
		return
	}

	user, err := s.store.UserByHandle(c.Request.Context(), req.Handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown handle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup user failed"})
		return
	}

	sess, err := s.sessions.Create(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{Token: sess.Token, Viewer: user})
}

const viewerKey = "viewer"

// authMiddleware 校验 Bearer 令牌并把 viewer 放入请求上下文。
// WebSocket 握手无法自定义请求头，允许 ?token= 作为等价形式。
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || token == c.GetHeader("Authorization") {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sess, err := s.sessions.Get(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "load session failed"})
			return
		}

		c.Set(viewerKey, sess.User)
		c.Next()
	}
}

func viewer(c *gin.Context) model.User {
	return c.MustGet(viewerKey).(model.User)
}

// roomOf 解析路径上的 space/room 并校验归属。
func (s *Server) roomOf(c *gin.Context) (model.Room, bool) {
	room, err := s.store.GetRoom(c.Request.Context(), c.Param("space"), c.Param("room"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "load room failed"})
		}
		return model.Room{}, false
	}
	return room, true
}

// handleRoomBootstrap 处理房间页初始化的合并查询。
// 约定：viewer/space/room/书签/最近一页消息任何一部分失败则整个请求失败。
func (s *Server) handleRoomBootstrap(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}
	user := viewer(c)

	space, err := s.store.GetSpace(c.Request.Context(), room.SpaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load space failed"})
		return
	}
	bookmarks, err := s.store.Bookmarks(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load bookmarks failed"})
		return
	}
	messages, err := s.store.LatestPage(c.Request.Context(), room.ID, s.config.Rooms.BootstrapPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load messages failed"})
		return
	}

	c.JSON(http.StatusOK, model.RoomBootstrap{
		Viewer:    user,
		Space:     space,
		Room:      room,
		Bookmarks: bookmarks,
		Messages:  messages,
		Now:       s.now(),
	})
}

// handleOlderMessages 处理向更旧方向的翻页请求。
// 游标之前已无消息时返回 404：客户端把它当作翻页终态而不是错误。
func (s *Server) handleOlderMessages(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}

	before := c.Query("before")
	if before == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "before cursor required"})
		return
	}
	limit := s.config.Rooms.BootstrapPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	if limit > s.config.Rooms.MaxPageSize {
		limit = s.config.Rooms.MaxPageSize
	}

	page, err := s.store.PageBefore(c.Request.Context(), room.ID, before, limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no earlier messages"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load page failed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// handleSubmitMessage 处理消息提交：校验、落库、向房间 topic 广播。
func (s *Server) handleSubmitMessage(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var fieldErrs []model.FieldError
	if strings.TrimSpace(req.Body) == "" {
		fieldErrs = append(fieldErrs, model.FieldError{Attribute: "body", Message: "must not be blank"})
	}
	if req.ClientID == "" {
		fieldErrs = append(fieldErrs, model.FieldError{Attribute: "client_id", Message: "is required"})
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}

	msg := model.Message{
		ClientID: req.ClientID,
		Author:   viewer(c),
		Body:     req.Body,
		PostedAt: s.now(),
	}
	created, cursor, err := s.store.AppendMessage(c.Request.Context(), room.ID, msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store message failed"})
		return
	}

	// 广播包含提交者自己：客户端凭 ClientID 幂等去重。
	s.hub.BroadcastTopic(roomTopic(room.ID), model.PushFrame{
		Type:    model.FrameMessageCreated,
		Topic:   roomTopic(room.ID),
		Message: &created,
		Cursor:  cursor,
	})

	c.JSON(http.StatusOK, created)
}

// handleRecordView 记录 viewer 的 last-read 标记。
func (s *Server) handleRecordView(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}

	var req model.RecordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := s.store.RecordView(c.Request.Context(), room.ID, viewer(c).ID, req.LastReadID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record view failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAddBookmark 收藏房间并向该用户的全部连接推送书签变更。
func (s *Server) handleAddBookmark(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}
	user := viewer(c)

	b := model.Bookmark{RoomID: room.ID, RoomName: room.Name}
	if err := s.store.AddBookmark(c.Request.Context(), user.ID, b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add bookmark failed"})
		return
	}

	s.hub.SendToUser(user.ID, model.PushFrame{
		Type:     model.FrameBookmarkAdded,
		Bookmark: &b,
	})

	c.JSON(http.StatusOK, b)
}

// handleRemoveBookmark 取消收藏。
func (s *Server) handleRemoveBookmark(c *gin.Context) {
	room, ok := s.roomOf(c)
	if !ok {
		return
	}
	user := viewer(c)

	if err := s.store.RemoveBookmark(c.Request.Context(), user.ID, room.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove bookmark failed"})
		return
	}

	s.hub.SendToUser(user.ID, model.PushFrame{
		Type:     model.FrameBookmarkRemoved,
		Bookmark: &model.Bookmark{RoomID: room.ID, RoomName: room.Name},
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	if len(s.config.Socket.AllowedOrigins) == 0 {
		// 开发期不设白名单时放行本地来源。
		return strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")
	}
	for _, allowed := range s.config.Socket.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
