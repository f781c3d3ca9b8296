package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/auth"
	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextTokenTenantID is the key for the tenant the token was issued for.
	ContextTokenTenantID = "token_tenant_id"
)

// RevocationChecker reports revoked token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWT returns a middleware that validates the bearer token, rejects revoked
// tokens and sets user claims in context. A token is only accepted for the
// tenant it was issued in.
func JWT(jwtService *auth.JWTService, revoked RevocationChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Error("revocation check failed", zap.Error(err))
			response.Internal(c, "failed to verify session")
			c.Abort()
			return
		}
		if isRevoked {
			response.Unauthorized(c, "session revoked")
			c.Abort()
			return
		}
		if tid, ok := tenantctx.TenantID(c.Request.Context()); ok && tid != claims.TenantID.String() {
			response.Forbidden(c, "token was issued for another tenant")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTokenTenantID, claims.TenantID)
		c.Set(auth.ContextClaims, claims)
		c.Next()
	}
}

// UserID returns the authenticated user id set by JWT.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
