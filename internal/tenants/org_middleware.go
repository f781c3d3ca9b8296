package tenants

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/response"
)

// ContextOrgUnit is the context key for the *models.OrganizationUnit loaded by RequireOrgUnitInTenant.
const ContextOrgUnit = "org_unit"

// RequireOrgUnitInTenant loads the unit named by the :id param and rejects
// it unless it belongs to the request tenant.
func RequireOrgUnitInTenant(orgs *OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid organization unit id")
			c.Abort()
			return
		}
		tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		unit, err := orgs.GetOrgUnit(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if unit.TenantID != tenantID {
			response.Error(c, apperr.ErrTenantMismatch)
			c.Abort()
			return
		}
		c.Set(ContextOrgUnit, unit)
		c.Next()
	}
}
