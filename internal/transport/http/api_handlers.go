package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/presencechat/internal/auth"
	"github.com/vovakirdan/presencechat/internal/store"
)

// Authenticator is the credential service behind the REST endpoints.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*store.User, error)
	Authenticate(ctx context.Context, email, password string) (*store.User, error)
	IssueToken(user *store.User) (string, error)
}

// APIHandlers provides HTTP handlers for registration and login.
type APIHandlers struct {
	authService Authenticator
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService Authenticator, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService: authService,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login. The token may be sent on the
// WebSocket login frame. A registration whose token could not be issued still
// succeeds without one; the client logs in to get a token.
type AuthResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles user registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "password must be at most 72 bytes"})
		case errors.Is(err, auth.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "all fields are required"})
		case errors.Is(err, auth.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "email already in use"})
		default:
			h.log.Error().Err(err).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	// The account exists now, so a token failure must not turn into an error
	// the client would retry into a duplicate-email conflict.
	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("registered without session token")
	}
	c.JSON(http.StatusOK, AuthResponse{
		Success:  true,
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
}

// Login handles user login.
// POST /api/login
func (h *APIHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			h.log.Error().Err(err).Msg("failed to login user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:  true,
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
	h.log.Info().Str("user_id", user.ID).Msg("user logged in")
}
