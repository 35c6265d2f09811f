package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"loft-chat/internal/model"
)

// InMemoryStore 是一个基于内存的会话存储实现。
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Session
	ttl  time.Duration
	now  func() time.Time
}

func NewInMemoryStore(ttl time.Duration, now func() time.Time) *InMemoryStore {
	// 第一阶段用内存 store：实现简单、调试方便。
	// 注意：重启即丢会话；多实例部署需要替换为 Redis/DB。
	if now == nil {
		now = time.Now
	}
	return &InMemoryStore{
		data: make(map[string]*Session),
		ttl:  ttl,
		now:  now,
	}
}

// Create 为用户签发新会话并返回令牌。
func (s *InMemoryStore) Create(_ context.Context, user model.User) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		Token:     uuid.NewString(),
		User:      user,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.data[sess.Token] = sess
	return sess, nil
}

// Get 根据令牌取回会话。过期会话被顺手清理。
func (s *InMemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.data[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.data, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	return sess, nil
}
