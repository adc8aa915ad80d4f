package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/presencechat/internal/core"
)

// UserHandlers answers presence queries.
type UserHandlers struct {
	hub core.Hub
	log *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(hub core.Hub, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		hub: hub,
		log: logger,
	}
}

// OnlineUsersResponse lists the distinct ids of users with a live connection.
type OnlineUsersResponse struct {
	OnlineUsers []string `json:"onlineUsers"`
}

// OnlineUsers returns who is online.
// GET /api/users
func (h *UserHandlers) OnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, OnlineUsersResponse{OnlineUsers: h.hub.OnlineUsers()})
}
