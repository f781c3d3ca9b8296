package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/pkg/response"
)

// PlatformAdminChecker reports whether a user administers the platform.
type PlatformAdminChecker interface {
	IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequirePlatformAdmin allows only platform administrators. Must run after JWT.
func RequirePlatformAdmin(admins PlatformAdminChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		isAdmin, err := admins.IsPlatformAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.Error("platform admin check failed", zap.Error(err))
			response.Internal(c, "failed to check permissions")
			c.Abort()
			return
		}
		if !isAdmin {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
