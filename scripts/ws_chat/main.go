package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/presencechat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	userID := flag.String("user-id", "cli-user", "user id to log in with")
	username := flag.String("username", "cli", "display name")
	token := flag.String("token", "", "session token from /api/login (optional)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	login := proto.Inbound{Type: proto.InboundTypeLogin, UserID: *userID, Username: *username, Token: *token}
	if err := wsjson.Write(ctx, conn, login); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	fmt.Printf("Connected to %s as %s (%s)\n", *addr, *username, *userID)
	fmt.Println("Type messages and press Enter to send. /logout to log out. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *userID, *username)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			log.Printf("unmarshal frame: %v", err)
			continue
		}

		switch head.Type {
		case proto.OutboundTypeChat:
			var msg proto.Chat
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("unmarshal chat: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", msg.Timestamp, msg.Username, msg.Text)
		case proto.OutboundTypeUserStatus:
			var st proto.UserStatus
			if err := json.Unmarshal(data, &st); err != nil {
				log.Printf("unmarshal userStatus: %v", err)
				continue
			}
			fmt.Printf("* %s is %s\n", st.UserID, st.Status)
		default:
			fmt.Printf("frame: %s\n", data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, userID, username string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			frame := proto.Inbound{Type: proto.InboundTypeChat, UserID: userID, Username: username, Text: text}
			if text == "/logout" {
				frame = proto.Inbound{Type: proto.InboundTypeLogout}
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
