package runtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"loft-chat/client/internal/events"
	"loft-chat/client/internal/room"
	"loft-chat/client/internal/scroll"
	"loft-chat/internal/model"
)

const (
	// 队列容量：超过此值的消息将被丢弃（背压控制）
	defaultQueueCapacity = 100
	// 单次网络指令的超时
	defaultCommandTimeout = 10 * time.Second

	// 两个轮询时钟的节奏：墙钟/在场刷新约每秒一次，滚动位置采样约每秒两次。
	tickInterval       = time.Second
	scrollPollInterval = 500 * time.Millisecond
)

// TopicSocket 是运行时对推送通道的最小依赖：topic 的订阅与退订。
type TopicSocket interface {
	Join(topic string) error
	Leave(topic string) error
}

// Loop 为单个房间视图提供串行消息处理（Actor Model）。
// 解决问题：
// 1. 所有状态转移都经过同一个 goroutine 的归约调用，视图内没有共享内存竞态
// 2. 并发体现在未完成的异步操作上：网络请求、DOM 查询、定时器的完成
//    都作为后续消息回到同一个串行循环
type Loop struct {
	model   *room.Model
	backend room.API
	bridge  scroll.Bridge
	socket  TopicSocket

	// 会话过期时由归约产出 RedirectToLoginCmd，运行时只负责执行跳转。
	onRedirect func()

	msgChan chan room.Msg
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	closeOnce sync.Once
	logger    *log.Logger

	// 统计信息
	mu            sync.Mutex
	totalMsgs     int64
	processedMsgs int64
	droppedMsgs   int64
}

// New 创建房间视图的消息循环（未启动）。
func New(m *room.Model, backend room.API, bridge scroll.Bridge, socket TopicSocket, onRedirect func(), logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Loop{
		model:      m,
		backend:    backend,
		bridge:     bridge,
		socket:     socket,
		onRedirect: onRedirect,
		msgChan:    make(chan room.Msg, defaultQueueCapacity),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Start 挂载视图：同步执行 setup 指令（在场 join 在返回前已发出），
// 然后启动串行处理循环与轮询时钟。
func (l *Loop) Start() {
	for _, cmd := range room.Setup(l.model) {
		l.execute(cmd)
	}

	l.wg.Add(2)
	go l.processLoop()
	go l.tickLoop()

	l.logger.Printf("[Loop] started for room %s (topic %s)", l.model.Room.ID, l.model.Presence.Topic())
}

// Enqueue 把消息投入循环（异步、非阻塞）。队列满时丢弃并返回错误。
func (l *Loop) Enqueue(msg room.Msg) error {
	select {
	case <-l.ctx.Done():
		return fmt.Errorf("loop closed")
	default:
	}

	select {
	case l.msgChan <- msg:
		l.mu.Lock()
		l.totalMsgs++
		l.mu.Unlock()
		return nil
	default:
		l.mu.Lock()
		l.droppedMsgs++
		l.mu.Unlock()
		l.logger.Printf("[Loop] ⚠️  queue full, dropping message: %T", msg)
		return fmt.Errorf("loop queue full")
	}
}

// HandleFrame 把推送帧翻译为循环消息。socket 读循环把它注册为 FrameHandler，
// 这样传输层不持有控制器引用，路由责任留在运行时。
func (l *Loop) HandleFrame(frame model.PushFrame) {
	switch frame.Type {
	case model.FramePresenceState:
		_ = l.Enqueue(room.PresenceReceived{Topic: frame.Topic, Members: frame.Members})
	default:
		// 实体事件帧；无法翻译的帧成为 nil 事件，由归约当作 no-op 吸收。
		_ = l.Enqueue(room.PushReceived{Event: events.FromFrame(frame)})
	}
}

// processLoop 串行处理消息（单 goroutine）。
func (l *Loop) processLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		case msg := <-l.msgChan:
			for _, cmd := range room.Update(l.model, msg) {
				l.execute(cmd)
			}
			l.mu.Lock()
			l.processedMsgs++
			l.mu.Unlock()
		}
	}
}

// tickLoop 驱动两个轮询时钟。显式简化：用轮询代替持续事件流，
// 节奏是约定的一部分，低延迟不是。
func (l *Loop) tickLoop() {
	defer l.wg.Done()

	clock := time.NewTicker(tickInterval)
	defer clock.Stop()
	poll := time.NewTicker(scrollPollInterval)
	defer poll.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case now := <-clock.C:
			_ = l.Enqueue(room.Tick{Now: now})
		case <-poll.C:
			_ = l.Enqueue(room.ScrollTick{})
		}
	}
}

// execute 执行一条归约产出的指令。
// 网络指令在各自的 goroutine 里完成并把结果消息送回循环；
// 相对完成顺序没有保证，归约分支不依赖它。
func (l *Loop) execute(cmd room.Command) {
	switch cmd := cmd.(type) {
	case room.SubmitCmd:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
			defer cancel()
			created, err := l.backend.SubmitMessage(ctx, cmd.SpaceID, cmd.RoomID, cmd.Req)
			_ = l.Enqueue(room.SubmitResponded{Message: created, Err: err})
		}()

	case room.FetchOlderCmd:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
			defer cancel()
			page, err := l.backend.FetchOlderPage(ctx, cmd.SpaceID, cmd.RoomID, cmd.Before, cmd.Limit)
			_ = l.Enqueue(room.OlderFetched{Page: page, Err: err})
		}()

	case room.RecordViewCmd:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
			defer cancel()
			err := l.backend.RecordView(ctx, cmd.SpaceID, cmd.RoomID, model.RecordViewRequest{LastReadID: cmd.LastReadID})
			_ = l.Enqueue(room.ViewRecorded{Err: err})
		}()

	case room.JoinTopicCmd:
		if err := l.socket.Join(cmd.Topic); err != nil {
			l.logger.Printf("[Loop] ❌ join %s failed: %v", cmd.Topic, err)
		}

	case room.LeaveTopicCmd:
		if err := l.socket.Leave(cmd.Topic); err != nil {
			l.logger.Printf("[Loop] leave %s failed: %v", cmd.Topic, err)
		}

	case room.RequestScrollPositionCmd:
		l.bridge.RequestPosition(cmd.ElementID)

	case room.ScrollToAnchorCmd:
		l.bridge.ScrollTo(cmd.ElementID, cmd.AnchorID, cmd.Offset)

	case room.ScrollToBottomCmd:
		l.bridge.ScrollToBottom(cmd.ElementID)

	case room.RedirectToLoginCmd:
		l.logger.Printf("[Loop] session expired, redirecting to login")
		if l.onRedirect != nil {
			l.onRedirect()
		}

	default:
		l.logger.Printf("[Loop] unhandled command: %T", cmd)
	}
}

// Close 卸载视图：停掉循环与时钟后执行 teardown 指令。
// 串行循环先排空再离场，保证 leave 不会先于一个已处理的 join 送出；
// 还没来得及处理的 join 消息会随循环一起停掉，不会泄漏已加入的 topic。
func (l *Loop) Close() error {
	l.closeOnce.Do(func() {
		l.cancel()
		l.wg.Wait()

		for _, cmd := range room.Teardown(l.model) {
			l.execute(cmd)
		}

		l.mu.Lock()
		total, processed, dropped := l.totalMsgs, l.processedMsgs, l.droppedMsgs
		l.mu.Unlock()
		l.logger.Printf("[Loop] closed for room %s: total=%d processed=%d dropped=%d",
			l.model.Room.ID, total, processed, dropped)
	})
	return nil
}
