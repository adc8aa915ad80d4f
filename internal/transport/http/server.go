package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/presencechat/internal/auth"
	"github.com/vovakirdan/presencechat/internal/config"
	"github.com/vovakirdan/presencechat/internal/core"
)

// NewServer builds the HTTP server: REST endpoints for the credential store,
// the online-users query, and the WebSocket endpoint.
func NewServer(hub core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, logger)
	users := NewUserHandlers(hub, logger)
	ws := NewWSHandler(hub, authService, WSConfig{
		MaxMessageBytes:    cfg.MaxMessageBytes,
		WriteTimeout:       cfg.WriteTimeout,
		SendBuffer:         cfg.SendBuffer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequireToken:       cfg.RequireToken,
	}, logger)

	router.GET("/health", healthHandler)
	router.POST("/api/register", api.Register)
	router.POST("/api/login", api.Login)
	router.GET("/api/users", users.OnlineUsers)

	// The browser client dials the site root; /ws is the explicit path.
	router.GET("/ws", gin.WrapH(ws))
	router.GET("/", gin.WrapH(ws))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
