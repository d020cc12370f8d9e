package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/findmy/internal/domain/auth"
	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/internal/domain/restaurant"
	apperrors "github.com/yanqian/findmy/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	recommendSvc  recommendation.Service
	restaurantSvc restaurant.Service
	authSvc       auth.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(recommendSvc recommendation.Service, restaurantSvc restaurant.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		recommendSvc:  recommendSvc,
		restaurantSvc: restaurantSvc,
		authSvc:       authSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// Recommend runs the places recommendation pipeline for a free-text prompt.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendation.Request
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.recommendSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Inform searches the local restaurant directory with the intent extracted from a prompt.
func (h *Handler) Inform(c *gin.Context) {
	var req recommendation.Request
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.recommendSvc.Inform(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// domainError maps an AppError code onto the transport status. Server-side
// failures never leak their cause to the client.
func domainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeInvalidInput, "invalid_request":
		status = http.StatusBadRequest
	case "invalid_credentials":
		status = http.StatusUnauthorized
	case "invalid_token":
		status = http.StatusForbidden
	case apperrors.CodeNotFound, "user_not_found":
		status = http.StatusNotFound
	case apperrors.CodeConflict, "email_exists":
		status = http.StatusConflict
	case apperrors.CodeUpstreamUnavailable, "auth_not_configured":
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		return NewHTTPError(status, apperrors.CodeInternal, "something went wrong", err)
	}
	message := apperrors.MessageOf(err)
	if message == "" {
		message = http.StatusText(status)
	}
	return NewHTTPError(status, code, message, err)
}

// bindJSON decodes the request body into dst or aborts with a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return false
	}
	return true
}
