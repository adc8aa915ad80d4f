package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const inboxSize = 256

// Hub coordinates presence and chat for all connections.
type Hub interface {
	// Run processes requests until ctx is cancelled.
	Run(ctx context.Context)
	// RegisterClient adds a freshly opened connection.
	RegisterClient(c *Client)
	// UnregisterClient reports the connection's transport as closed.
	UnregisterClient(c *Client)
	// Dispatch queues a command received on c.
	Dispatch(c *Client, cmd *Command)
	// OnlineUsers returns the distinct user ids currently online.
	OnlineUsers() []string
	// IsOnline reports whether userID has a live connection.
	IsOnline(userID string) bool
}

// HubConfig tunes hub behavior.
type HubConfig struct {
	// BindIdentity makes chat messages carry the identity bound at login and
	// ignore the ids the client puts on the chat frame.
	BindIdentity bool
	// Now assigns message timestamps. Defaults to time.Now.
	Now func() time.Time
}

type requestKind int

const (
	requestRegister requestKind = iota
	requestUnregister
	requestCommand
)

type request struct {
	kind   requestKind
	client *Client
	cmd    *Command
}

type hub struct {
	cfg         HubConfig
	registry    *Registry
	broadcaster *Broadcaster
	inbox       chan request
	done        chan struct{}
	log         *zerolog.Logger
}

// NewHub creates a hub. Every request is handled to completion on the Run
// goroutine, in arrival order.
func NewHub(cfg HubConfig, logger *zerolog.Logger) Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &hub{
		cfg:      cfg,
		registry: NewRegistry(),
		inbox:    make(chan request, inboxSize),
		done:     make(chan struct{}),
		log:      logger,
	}
	h.broadcaster = NewBroadcaster(h.registry, func(c *Client) {
		h.disconnect(c, "send failed")
	}, logger)
	return h
}

func (h *hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case req := <-h.inbox:
			h.handle(req)
		}
	}
}

func (h *hub) RegisterClient(c *Client) {
	if !h.submit(request{kind: requestRegister, client: c}) {
		c.close()
	}
}

func (h *hub) UnregisterClient(c *Client) {
	h.submit(request{kind: requestUnregister, client: c})
}

func (h *hub) Dispatch(c *Client, cmd *Command) {
	if cmd == nil {
		return
	}
	h.submit(request{kind: requestCommand, client: c, cmd: cmd})
}

func (h *hub) OnlineUsers() []string {
	return h.registry.ListOnlineUserIDs()
}

func (h *hub) IsOnline(userID string) bool {
	return h.registry.IsOnline(userID)
}

// submit queues req unless the hub has stopped.
func (h *hub) submit(req request) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.inbox <- req:
		return true
	case <-h.done:
		return false
	}
}

func (h *hub) handle(req request) {
	switch req.kind {
	case requestRegister:
		h.registry.Attach(req.client)
		h.log.Debug().Str("client_id", req.client.ID).Int("live", h.registry.Len()).Msg("client connected")
	case requestUnregister:
		h.disconnect(req.client, "connection closed")
	case requestCommand:
		if err := h.handleCommand(req.client, req.cmd); err != nil {
			h.log.Debug().
				Str("client_id", req.client.ID).
				Str("command", req.cmd.Kind.String()).
				Str("code", err.Code).
				Msg(err.Message)
		}
	}
}

func (h *hub) handleCommand(c *Client, cmd *Command) *CoreError {
	if !h.registry.IsLive(c.ID) {
		return coreError(ErrCodeConnectionClosed, "command from closed connection ignored")
	}

	switch cmd.Kind {
	case CommandLogin:
		return h.login(c, cmd)
	case CommandChat:
		return h.chat(c, cmd)
	case CommandLogout:
		if id, ok := h.registry.Dissociate(c.ID); ok {
			h.log.Info().Str("client_id", c.ID).Str("user_id", id.UserID).Msg("user logged out")
			h.broadcaster.BroadcastAll(presenceEvent(id.UserID, StatusOffline))
		}
		return nil
	default:
		return coreError(ErrCodeUnknownCommand, "unknown command ignored")
	}
}

func (h *hub) login(c *Client, cmd *Command) *CoreError {
	if cmd.UserID == "" {
		return coreError(ErrCodeMissingUserID, "login without user id ignored")
	}

	id := Identity{UserID: cmd.UserID, Username: cmd.Username}
	if !h.registry.Associate(c.ID, id) {
		return coreError(ErrCodeConnectionClosed, "login on closed connection ignored")
	}
	h.log.Info().Str("client_id", c.ID).Str("user_id", id.UserID).Msg("user online")
	h.broadcaster.BroadcastAll(presenceEvent(id.UserID, StatusOnline))
	return nil
}

func (h *hub) chat(c *Client, cmd *Command) *CoreError {
	bound, ok := h.registry.IdentityOf(c.ID)
	if !ok {
		return coreError(ErrCodeNotAuthenticated, "chat before login ignored")
	}
	if strings.TrimSpace(cmd.Text) == "" {
		return coreError(ErrCodeEmptyMessage, "empty chat ignored")
	}

	msg := ChatMessage{
		SenderUserID:   cmd.UserID,
		SenderUsername: cmd.Username,
		Text:           cmd.Text,
		Timestamp:      h.cfg.Now().UTC(),
	}
	if h.cfg.BindIdentity || msg.SenderUserID == "" {
		msg.SenderUserID = bound.UserID
	}
	if h.cfg.BindIdentity || msg.SenderUsername == "" {
		msg.SenderUsername = bound.Username
	}

	h.broadcaster.BroadcastAll(&Event{Kind: EventChat, Message: msg})
	return nil
}

// disconnect runs the close path for c. It is safe to call more than once
// for the same connection: only the first call dissociates and announces.
func (h *hub) disconnect(c *Client, reason string) {
	id, hadIdentity := h.registry.Dissociate(c.ID)
	h.registry.Detach(c.ID)
	c.close()

	if !hadIdentity {
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("user_id", id.UserID).Str("reason", reason).Msg("user offline")
	h.broadcaster.BroadcastAll(presenceEvent(id.UserID, StatusOffline))
}

func (h *hub) shutdown() {
	clients := h.registry.Snapshot()
	for _, c := range clients {
		h.registry.Dissociate(c.ID)
		h.registry.Detach(c.ID)
		c.close()
	}
	h.log.Info().Int("clients", len(clients)).Msg("hub stopped")
}
