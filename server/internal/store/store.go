package store

import (
	"context"
	"errors"

	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

// ErrNotFound 表示实体不存在，或翻页游标之前已没有更早的消息。
var ErrNotFound = errors.New("not found")

type Store interface {
	GetSpace(ctx context.Context, id string) (model.Space, error)
	GetRoom(ctx context.Context, spaceID, roomID string) (model.Room, error)
	UserByHandle(ctx context.Context, handle string) (model.User, error)

	// LatestPage 返回房间最近的一页消息（旧 -> 新），
	// PageInfo 描述向更旧方向的边界。
	LatestPage(ctx context.Context, roomID string, limit int) (connection.Connection[model.Message], error)
	// PageBefore 返回游标之前的一页更早消息。
	// 约定：游标无法解析或它之前已无消息时返回 ErrNotFound（翻页终态）。
	PageBefore(ctx context.Context, roomID, before string, limit int) (model.MessagePage, error)
	// AppendMessage 追加消息并分配单调 seq 与游标。
	// 幂等性：同一 ClientID 的重复提交返回已存储的消息与游标。
	AppendMessage(ctx context.Context, roomID string, msg model.Message) (model.Message, string, error)

	Bookmarks(ctx context.Context, userID string) ([]model.Bookmark, error)
	AddBookmark(ctx context.Context, userID string, b model.Bookmark) error
	RemoveBookmark(ctx context.Context, userID, roomID string) error

	// RecordView 记录 viewer 在该房间的 last-read 标记。
	RecordView(ctx context.Context, roomID, userID string, lastReadID *string) error
	LastRead(ctx context.Context, roomID, userID string) (*string, error)
}
