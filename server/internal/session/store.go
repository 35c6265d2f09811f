package session

import (
	"context"
	"errors"
	"time"

	"loft-chat/internal/model"
)

// ErrNotFound 表示令牌不存在或会话已过期，对调用方等价于未认证。
var ErrNotFound = errors.New("session not found")

// Session 是一次登录产生的认证会话。
type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time
}

type Store interface {
	// Create 为用户签发新会话并返回令牌。
	Create(ctx context.Context, user model.User) (*Session, error)
	// Get 根据令牌取回会话。过期会话视同不存在。
	Get(ctx context.Context, token string) (*Session, error)
}
