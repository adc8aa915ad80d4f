package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/presencechat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run logs in, sends one chat and waits for it to come back.
func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	userID := flag.String("user-id", "smoke", "user id to log in with")
	username := flag.String("username", "tester", "display name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	frames := []proto.Inbound{
		{Type: proto.InboundTypeLogin, UserID: *userID, Username: *username},
		{Type: proto.InboundTypeChat, UserID: *userID, Username: *username, Text: *text},
	}
	for _, f := range frames {
		if err := wsjson.Write(ctx, conn, f); err != nil {
			return fmt.Errorf("send %s: %w", f.Type, err)
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received: %s\n", data)

		var msg proto.Chat
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("unmarshal frame: %w", err)
		}
		if msg.Type == proto.OutboundTypeChat && msg.UserID == *userID {
			fmt.Printf("Chat: user=%s text=%q ts=%s\n", msg.Username, msg.Text, msg.Timestamp)
			return nil
		}
	}
}
