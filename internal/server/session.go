// Package server exposes the client core to a browser front end over a
// small JSON API. Every handler delegates to the same session, api and
// views code the CLI uses.
package server

import (
	"context"
	"net/http"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/session"
	"ai-agent-character-demo/client/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Session is the part of the session store the handlers drive
type Session interface {
	Snapshot() session.Snapshot
	IsAuthenticated() bool
	Login(ctx context.Context, email, password string) bool
	Signup(ctx context.Context, name, email, username, password string) bool
	Logout(ctx context.Context) error
}

// SessionHandler serves /api/session
type SessionHandler struct {
	session Session
}

func NewSessionHandler(s Session) *SessionHandler {
	return &SessionHandler{session: s}
}

// Get returns the current session snapshot
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}

	if !h.session.Login(c.Request.Context(), req.Email, req.Password) {
		c.Error(errors.NewUnauthorizedError("LOGIN_FAILED", session.MsgLoginFailed))
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}

	if !h.session.Signup(c.Request.Context(), req.Name, req.Email, req.Username, req.Password) {
		c.Error(errors.NewBadRequestError("SIGNUP_FAILED", session.MsgSignupFailed))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": session.MsgSignupSuccess})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequireSession rejects requests while nobody is signed in
func RequireSession(s Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.IsAuthenticated() {
			c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
