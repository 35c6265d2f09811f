package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"loft-chat/client/internal/api"
	"loft-chat/client/internal/room"
	"loft-chat/client/internal/runtime"
	"loft-chat/client/internal/scroll"
	"loft-chat/client/internal/socket"
	"loft-chat/client/internal/timeutil"
	"loft-chat/internal/model"
)

// noopBridge 是终端版客户端的滚动桥：终端没有滚动视口，
// 位置查询与滚动指令都被吸收，翻页靠 /older 命令手动触发。
type noopBridge struct{}

func (noopBridge) RequestPosition(elementID string)                {}
func (noopBridge) ScrollTo(elementID, anchorID string, offset int) {}
func (noopBridge) ScrollToBottom(elementID string)                 {}

// topOfHistory 伪造一个贴顶的滚动位置，让归约按正常规则决定是否翻页。
func topOfHistory() scroll.Position {
	return scroll.Position{OffsetFromTop: 0}
}

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "server base url")
	socketURL := flag.String("socket", "ws://localhost:8080/api/socket", "push socket url")
	handle := flag.String("handle", "ada", "login handle")
	spaceID := flag.String("space", "sp_loft", "space id")
	roomID := flag.String("room", "rm_general", "room id")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	login, err := api.Login(ctx, *baseURL, *handle)
	cancel()
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	log.Printf("logged in as %s", login.Viewer.DisplayName)

	backend := api.NewClient(*baseURL, login.Token)

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	m, err := room.Init(initCtx, backend, *spaceID, *roomID)
	cancel()
	if err != nil {
		log.Fatalf("load room: %v", err)
	}
	fmt.Printf("== #%s (%s) ==\n", m.Room.Name, m.Room.Purpose)
	for _, edge := range m.Messages.Edges {
		printMessage(edge.Node.Author.DisplayName, edge.Node.Body, edge.Node.PostedAt)
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	sock, err := socket.Dial(dialCtx, *socketURL+"?token="+login.Token, login.Token, nil)
	cancel()
	if err != nil {
		log.Fatalf("dial socket: %v", err)
	}
	defer sock.Close()

	loop := runtime.New(m, backend, noopBridge{}, sock, func() {
		log.Printf("session expired, please log in again")
		os.Exit(1)
	}, nil)

	// 先接线再启动读循环，保证不丢第一批推送帧。
	// 新消息帧顺带打印到终端，剩下的路由交给消息循环。
	sock.SetHandler(func(frame model.PushFrame) {
		if frame.Type == model.FrameMessageCreated && frame.Message != nil {
			printMessage(frame.Message.Author.DisplayName, frame.Message.Body, frame.Message.PostedAt)
		}
		loop.HandleFrame(frame)
	})
	sock.Start()
	loop.Start()
	defer loop.Close()

	fmt.Println("type a message and press enter; /older to page back; /quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "/quit":
			return
		case line == "/older":
			// 终端没有滚动位置，直接用顶部位置触发向上翻页判定。
			_ = loop.Enqueue(room.ScrollPositionReceived{Pos: topOfHistory()})
		case strings.TrimSpace(line) == "":
			continue
		default:
			_ = loop.Enqueue(room.BodyChanged{Body: line})
			_ = loop.Enqueue(room.SubmitClicked{})
		}
	}
}

// printMessage 用本机时区渲染一行消息（打印可能发生在 socket 读循环上，
// 不读共享模型）。
func printMessage(author, body string, postedAt time.Time) {
	fmt.Printf("[%s] %s: %s\n", timeutil.FormatClock(postedAt.Local()), author, body)
}
