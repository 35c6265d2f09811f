package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"loft-chat/client/internal/presence"
	"loft-chat/client/internal/room"
	"loft-chat/internal/connection"
	"loft-chat/internal/model"
)

type fakeBackend struct {
	mu        sync.Mutex
	submits   []model.SubmitRequest
	lastReads []*string
}

func (f *fakeBackend) RoomBootstrap(ctx context.Context, spaceID, roomID string) (model.RoomBootstrap, error) {
	return model.RoomBootstrap{}, nil
}

func (f *fakeBackend) FetchOlderPage(ctx context.Context, spaceID, roomID, before string, limit int) (model.MessagePage, error) {
	return model.MessagePage{}, nil
}

func (f *fakeBackend) SubmitMessage(ctx context.Context, spaceID, roomID string, req model.SubmitRequest) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, req)
	return model.Message{ID: "created", ClientID: req.ClientID, RoomID: roomID, Body: req.Body}, nil
}

func (f *fakeBackend) RecordView(ctx context.Context, spaceID, roomID string, req model.RecordViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReads = append(f.lastReads, req.LastReadID)
	return nil
}

type fakeSocket struct {
	mu  sync.Mutex
	ops []string
}

func (f *fakeSocket) Join(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "join:"+topic)
	return nil
}

func (f *fakeSocket) Leave(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "leave:"+topic)
	return nil
}

type fakeBridge struct {
	mu  sync.Mutex
	ops []string
}

func (f *fakeBridge) RequestPosition(elementID string) {
	f.record("request:" + elementID)
}

func (f *fakeBridge) ScrollTo(elementID, anchorID string, offset int) {
	f.record("anchor:" + anchorID)
}

func (f *fakeBridge) ScrollToBottom(elementID string) {
	f.record("bottom:" + elementID)
}

func (f *fakeBridge) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func testModel() *room.Model {
	end := "c1"
	return &room.Model{
		Viewer: model.User{ID: "u1"},
		Space:  model.Space{ID: "sp1"},
		Room:   model.Room{ID: "r1", SpaceID: "sp1"},
		Messages: connection.Connection[model.Message]{
			Edges: []connection.Edge[model.Message]{
				{Node: model.Message{ID: "m1", RoomID: "r1"}, Cursor: "c1"},
				{Node: model.Message{ID: "m2", RoomID: "r1"}, Cursor: "c2"},
			},
			PageInfo: connection.PageInfo{HasNextPage: true, EndCursor: &end},
		},
		Now:      time.Now(),
		Presence: presence.NewTracker(presence.TopicForRoom("r1")),
	}
}

func TestLoop_SetupAndTeardownOrdering(t *testing.T) {
	backend := &fakeBackend{}
	sock := &fakeSocket{}
	bridge := &fakeBridge{}

	loop := New(testModel(), backend, bridge, sock, nil, nil)
	loop.Start()

	// setup 在 Start 返回前同步执行：join 已发出，last-read 请求已在途
	sock.mu.Lock()
	if len(sock.ops) != 1 || sock.ops[0] != "join:rooms:r1" {
		sock.mu.Unlock()
		t.Fatalf("expected synchronous join on start, got %v", sock.ops)
	}
	sock.mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	backend.mu.Lock()
	if len(backend.lastReads) != 1 || backend.lastReads[0] == nil || *backend.lastReads[0] != "m2" {
		backend.mu.Unlock()
		t.Fatalf("expected record-view with last read m2, got %v", backend.lastReads)
	}
	backend.mu.Unlock()

	if err := loop.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// teardown 之后必须处于已离场状态，leave 排在 join 之后
	sock.mu.Lock()
	defer sock.mu.Unlock()
	if len(sock.ops) != 2 || sock.ops[1] != "leave:rooms:r1" {
		t.Fatalf("expected leave after join, got %v", sock.ops)
	}
}

func TestLoop_SubmitFlow(t *testing.T) {
	backend := &fakeBackend{}
	loop := New(testModel(), backend, &fakeBridge{}, &fakeSocket{}, nil, nil)
	loop.Start()

	_ = loop.Enqueue(room.BodyChanged{Body: "hello"})
	_ = loop.Enqueue(room.SubmitClicked{})

	// 等待提交请求和它的响应消息都跑完一轮
	time.Sleep(200 * time.Millisecond)
	_ = loop.Close()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.submits) != 1 || backend.submits[0].Body != "hello" {
		t.Fatalf("expected one submit with the composer body, got %+v", backend.submits)
	}
	if backend.submits[0].ClientID == "" {
		t.Fatalf("expected client id for idempotent submit")
	}
	if loop.model.ComposerBody != "" || loop.model.IsSubmitting {
		t.Fatalf("expected composer cleared and in-flight flag dropped after response")
	}
}

func TestLoop_HandleFrameRouting(t *testing.T) {
	bridge := &fakeBridge{}
	loop := New(testModel(), &fakeBackend{}, bridge, &fakeSocket{}, nil, nil)
	loop.Start()

	loop.HandleFrame(model.PushFrame{
		Type:    model.FramePresenceState,
		Topic:   "rooms:r1",
		Members: []model.User{{ID: "u2"}},
	})
	loop.HandleFrame(model.PushFrame{
		Type:    model.FrameMessageCreated,
		Message: &model.Message{ID: "m3", RoomID: "r1", Body: "pushed"},
		Cursor:  "c3",
	})
	// 与当前视图无关的帧与未知帧都应被吸收
	loop.HandleFrame(model.PushFrame{
		Type:    model.FrameMessageCreated,
		Message: &model.Message{ID: "x1", RoomID: "other"},
	})
	loop.HandleFrame(model.PushFrame{Type: "mystery"})

	time.Sleep(100 * time.Millisecond)
	_ = loop.Close()

	if !loop.model.Presence.Loaded() {
		t.Fatalf("expected presence snapshot applied")
	}
	if !loop.model.Messages.HasNode("m3") {
		t.Fatalf("expected pushed message appended")
	}
	if loop.model.Messages.HasNode("x1") {
		t.Fatalf("expected other room's message ignored")
	}

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	found := false
	for _, op := range bridge.ops {
		if op == "bottom:"+room.MessagesElementID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected live append to scroll to bottom, ops=%v", bridge.ops)
	}
}

func TestLoop_EnqueueAfterCloseFails(t *testing.T) {
	loop := New(testModel(), &fakeBackend{}, &fakeBridge{}, &fakeSocket{}, nil, nil)
	loop.Start()
	_ = loop.Close()

	if err := loop.Enqueue(room.ScrollTick{}); err == nil {
		t.Fatalf("expected enqueue after close to fail")
	}
}
