package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/presencechat/internal/core"
	"github.com/vovakirdan/presencechat/internal/proto"
)

var (
	errUnknownFrameType = errors.New("unknown frame type")
	errMissingUserID    = errors.New("login frame without userId")
	errTokenRequired    = errors.New("login frame without token")
)

// inboundToCommand maps a decoded frame to a hub command. Login frames carrying
// a token take their identity from the token; otherwise the claimed userId is
// trusted and the username is looked up when the frame omits it.
func (h *WSHandler) inboundToCommand(ctx context.Context, inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeLogin:
		return h.loginCommand(ctx, inbound)
	case proto.InboundTypeChat:
		return &core.Command{
			Kind:     core.CommandChat,
			UserID:   inbound.UserID,
			Username: inbound.Username,
			Text:     inbound.Text,
		}, nil
	case proto.InboundTypeLogout:
		return &core.Command{Kind: core.CommandLogout}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFrameType, inbound.Type)
	}
}

func (h *WSHandler) loginCommand(ctx context.Context, inbound proto.Inbound) (*core.Command, error) {
	if inbound.Token != "" {
		claims, err := h.identities.ValidateToken(inbound.Token)
		if err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:     core.CommandLogin,
			UserID:   claims.UserID,
			Username: claims.Username,
		}, nil
	}

	if h.cfg.RequireToken {
		return nil, errTokenRequired
	}
	if inbound.UserID == "" {
		return nil, errMissingUserID
	}

	cmd := &core.Command{
		Kind:     core.CommandLogin,
		UserID:   inbound.UserID,
		Username: inbound.Username,
	}
	if cmd.Username == "" && h.identities != nil {
		if user, err := h.identities.LookupUser(ctx, inbound.UserID); err == nil {
			cmd.Username = user.Username
		} else {
			h.log.Debug().Err(err).Str("user_id", inbound.UserID).Msg("login for unknown user id, trusting claim")
		}
	}
	return cmd, nil
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventChat:
		return proto.Chat{
			Type:      proto.OutboundTypeChat,
			UserID:    event.Message.SenderUserID,
			Username:  event.Message.SenderUsername,
			Text:      event.Message.Text,
			Timestamp: event.Message.Timestamp.UTC().Format(proto.TimestampLayout),
		}
	case core.EventPresence:
		return proto.UserStatus{
			Type:   proto.OutboundTypeUserStatus,
			UserID: event.UserID,
			Status: string(event.Status),
		}
	default:
		return nil
	}
}
