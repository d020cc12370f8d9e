package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/findmy/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

// callerID is the user id of the verified bearer token; zero outside authMiddleware.
func callerID(c *gin.Context) int64 {
	if claims, ok := c.Value(authClaimsKey).(auth.Claims); ok {
		return claims.UserID
	}
	return 0
}
