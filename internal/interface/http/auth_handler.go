package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/findmy/internal/domain/auth"
)

// Register creates a password account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleSignIn exchanges the ID token from the frontend's Google popup for a bearer token.
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req auth.GoogleSignInRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.GoogleSignIn(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.authSvc.Profile(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, user)
}
