package core

import "time"

// ChatMessage is a chat line as broadcast by the server. It is never persisted.
type ChatMessage struct {
	SenderUserID   string
	SenderUsername string
	Text           string
	// Timestamp is assigned by the hub when the message is broadcast.
	Timestamp time.Time
}
