package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"loft-chat/internal/connection"
	"loft-chat/internal/model"
	"loft-chat/server/internal/domain"
)

type storedMessage struct {
	msg model.Message
	seq int64
}

// InMemoryStore 是基于内存的聊天数据存储实现。
// 重启即丢数据；多实例部署需要替换为数据库实现，接口不变。
type InMemoryStore struct {
	mu        sync.RWMutex
	spaces    map[string]model.Space
	rooms     map[string]model.Room
	users     map[string]model.User // handle -> user
	messages  map[string][]storedMessage
	seqs      map[string]int64
	clientIDs map[string]map[string]int64 // roomID -> clientID -> seq
	bookmarks map[string][]model.Bookmark // userID -> bookmarks
	lastReads map[string]string           // roomID|userID -> messageID
	now       func() time.Time
}

func NewInMemoryStore(now func() time.Time) *InMemoryStore {
	if now == nil {
		now = time.Now
	}
	return &InMemoryStore{
		spaces:    make(map[string]model.Space),
		rooms:     make(map[string]model.Room),
		users:     make(map[string]model.User),
		messages:  make(map[string][]storedMessage),
		seqs:      make(map[string]int64),
		clientIDs: make(map[string]map[string]int64),
		bookmarks: make(map[string][]model.Bookmark),
		lastReads: make(map[string]string),
		now:       now,
	}
}

// ApplySeed 灌入启动种子数据（space、房间、用户）。
func (s *InMemoryStore) ApplySeed(seed *domain.Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spaces[seed.Space.ID] = seed.Space
	for _, r := range seed.Rooms {
		s.rooms[r.ID] = r
	}
	for _, u := range seed.Users {
		s.users[u.Handle] = u
	}
}

func (s *InMemoryStore) GetSpace(_ context.Context, id string) (model.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	space, ok := s.spaces[id]
	if !ok {
		return model.Space{}, ErrNotFound
	}
	return space, nil
}

func (s *InMemoryStore) GetRoom(_ context.Context, spaceID, roomID string) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok || room.SpaceID != spaceID {
		return model.Room{}, ErrNotFound
	}
	return room, nil
}

func (s *InMemoryStore) UserByHandle(_ context.Context, handle string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[handle]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

// cursorFor 把单调 seq 编码为对客户端不透明的游标。
func cursorFor(seq int64) string {
	return fmt.Sprintf("%016d", seq)
}

func parseCursor(cursor string) (int64, bool) {
	seq, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}

func (s *InMemoryStore) LatestPage(_ context.Context, roomID string, limit int) (connection.Connection[model.Message], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.rooms[roomID]; !ok {
		return connection.Connection[model.Message]{}, ErrNotFound
	}

	msgs := s.messages[roomID]
	start := 0
	if limit > 0 && len(msgs) > limit {
		start = len(msgs) - limit
	}
	page := msgs[start:]

	conn := connection.Connection[model.Message]{
		Edges: make([]connection.Edge[model.Message], 0, len(page)),
	}
	for _, sm := range page {
		conn.Edges = append(conn.Edges, connection.Edge[model.Message]{Node: sm.msg, Cursor: cursorFor(sm.seq)})
	}
	if len(page) > 0 {
		oldest := cursorFor(page[0].seq)
		conn.PageInfo = connection.PageInfo{
			HasNextPage: start > 0,
			EndCursor:   &oldest,
		}
	}
	return conn, nil
}

func (s *InMemoryStore) PageBefore(_ context.Context, roomID, before string, limit int) (model.MessagePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.rooms[roomID]; !ok {
		return model.MessagePage{}, ErrNotFound
	}
	beforeSeq, ok := parseCursor(before)
	if !ok {
		return model.MessagePage{}, ErrNotFound
	}

	var older []storedMessage
	for _, sm := range s.messages[roomID] {
		if sm.seq < beforeSeq {
			older = append(older, sm)
		}
	}
	if len(older) == 0 {
		// 游标之前已无消息：翻页终态，不是服务端错误。
		return model.MessagePage{}, ErrNotFound
	}

	start := 0
	if limit > 0 && len(older) > limit {
		start = len(older) - limit
	}
	page := older[start:]

	out := model.MessagePage{
		Edges: make([]connection.Edge[model.Message], 0, len(page)),
	}
	for _, sm := range page {
		out.Edges = append(out.Edges, connection.Edge[model.Message]{Node: sm.msg, Cursor: cursorFor(sm.seq)})
	}
	oldest := cursorFor(page[0].seq)
	out.PageInfo = connection.PageInfo{
		HasNextPage: start > 0,
		EndCursor:   &oldest,
	}
	return out, nil
}

func (s *InMemoryStore) AppendMessage(_ context.Context, roomID string, msg model.Message) (model.Message, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return model.Message{}, "", ErrNotFound
	}

	// 幂等：同一 ClientID 的重试返回已分配的消息。
	if msg.ClientID != "" {
		if seen, ok := s.clientIDs[roomID]; ok {
			if seq, exists := seen[msg.ClientID]; exists {
				for _, sm := range s.messages[roomID] {
					if sm.seq == seq {
						return sm.msg, cursorFor(seq), nil
					}
				}
			}
		}
	}

	s.seqs[roomID]++
	seq := s.seqs[roomID]

	stored := msg
	stored.RoomID = roomID
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.PostedAt.IsZero() {
		stored.PostedAt = s.now()
	}
	s.messages[roomID] = append(s.messages[roomID], storedMessage{msg: stored, seq: seq})

	if msg.ClientID != "" {
		if s.clientIDs[roomID] == nil {
			s.clientIDs[roomID] = make(map[string]int64)
		}
		s.clientIDs[roomID][msg.ClientID] = seq
	}

	return stored, cursorFor(seq), nil
}

func (s *InMemoryStore) Bookmarks(_ context.Context, userID string) ([]model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.bookmarks[userID]
	out := make([]model.Bookmark, len(list))
	copy(out, list)
	return out, nil
}

func (s *InMemoryStore) AddBookmark(_ context.Context, userID string, b model.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[userID] = connection.InsertUniqueBy(
		func(x model.Bookmark) string { return x.RoomID }, b, s.bookmarks[userID])
	return nil
}

func (s *InMemoryStore) RemoveBookmark(_ context.Context, userID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[userID] = connection.RemoveBy(
		func(x model.Bookmark) string { return x.RoomID }, model.Bookmark{RoomID: roomID}, s.bookmarks[userID])
	return nil
}

func viewKey(roomID, userID string) string {
	return roomID + "|" + userID
}

func (s *InMemoryStore) RecordView(_ context.Context, roomID, userID string, lastReadID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lastReadID == nil {
		// 房间为空时没有标记可记，调用依然成功。
		return nil
	}
	s.lastReads[viewKey(roomID, userID)] = *lastReadID
	return nil
}

func (s *InMemoryStore) LastRead(_ context.Context, roomID, userID string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.lastReads[viewKey(roomID, userID)]
	if !ok {
		return nil, nil
	}
	return &id, nil
}
