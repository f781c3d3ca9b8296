package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/response"
)

const (
	// HeaderTenantID carries the active tenant of a request.
	HeaderTenantID = "X-Tenant-Id"
	// ContextTenantID is the key for the request tenant id in gin context.
	ContextTenantID = "tenant_id"
)

// Tenant binds the X-Tenant-Id header to the request context. Requests
// under /api must carry it, except the tenant administration routes under
// the given exempt prefixes.
func Tenant(exempt ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(HeaderTenantID))
		path := c.Request.URL.Path
		if tenantID == "" && requiresTenant(path, exempt) {
			response.BadRequest(c, "missing tenant id")
			c.Abort()
			return
		}
		if tenantID != "" {
			c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
			c.Set(ContextTenantID, tenantID)
		}
		c.Next()
	}
}

func requiresTenant(path string, exempt []string) bool {
	if !underPath(path, "/api") {
		return false
	}
	for _, p := range exempt {
		if underPath(path, p) {
			return false
		}
	}
	return true
}

// underPath reports whether path is prefix or a path below it.
func underPath(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
