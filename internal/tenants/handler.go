package tenants

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/auth"
	"github.com/aura-platform/usercenter/internal/middleware"
	"github.com/aura-platform/usercenter/internal/models"
	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/response"
)

// tenant codes: lowercase alphanumeric with - or _, 2-64 chars. The platform
// code is reserved and never matches.
var codeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

// CreateTenantRequest is the body for POST /api/tenants.
type CreateTenantRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

// UpdateTenantRequest is the body for PATCH /api/tenants/:id.
type UpdateTenantRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// AddPlatformMemberRequest is the body for POST /api/tenants/platform/members.
type AddPlatformMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Roles  []string  `json:"roles"`
}

// CreateOrgUnitRequest is the body for POST /api/org-units.
type CreateOrgUnitRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Name     string     `json:"name" binding:"required"`
}

// UpdateOrgUnitRequest is the body for PATCH /api/org-units/:id.
type UpdateOrgUnitRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

// SwitchResponse is returned after a successful tenant switch.
type SwitchResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Tenant    *models.Tenant `json:"tenant"`
}

// Handler handles tenant, platform and organization HTTP endpoints.
type Handler struct {
	svc      *Service
	orgs     *OrganizationService
	platform *PlatformService
	jwt      *auth.JWTService
	logger   *zap.Logger
}

// NewHandler creates a tenants handler.
func NewHandler(svc *Service, orgs *OrganizationService, platform *PlatformService, jwt *auth.JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, orgs: orgs, platform: platform, jwt: jwt, logger: logger}
}

// ListBusiness handles GET /api/tenants.
func (h *Handler) ListBusiness(c *gin.Context) {
	list, err := h.svc.ListBusinessTenants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListAll handles GET /api/tenants/all (platform admin).
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.svc.ListTenants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/tenants (platform admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !codeRegex.MatchString(req.Code) {
		response.BadRequest(c, "code must be 2-64 lowercase letters, digits, - or _")
		return
	}
	typ := models.TenantType(req.Type)
	if typ == models.TenantTypePlatform {
		response.BadRequest(c, "platform tenant cannot be created")
		return
	}
	t, err := h.svc.CreateTenant(c.Request.Context(), req.Code, req.Name, typ)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

// Get handles GET /api/tenants/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	t, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// Update handles PATCH /api/tenants/:id (platform admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != nil && *req.Status != models.StatusActive && *req.Status != models.StatusDisabled {
		response.BadRequest(c, "status must be ACTIVE or DISABLED")
		return
	}
	if h.platform.IsPlatformTenant(id) && req.Status != nil && *req.Status != models.StatusActive {
		response.BadRequest(c, "platform tenant cannot be disabled")
		return
	}
	t, err := h.svc.UpdateTenant(c.Request.Context(), id, req.Name, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// Disable handles POST /api/tenants/:id/disable (platform admin).
func (h *Handler) Disable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	if h.platform.IsPlatformTenant(id) {
		response.BadRequest(c, "platform tenant cannot be disabled")
		return
	}
	if err := h.svc.DisableTenant(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Switch handles POST /api/tenants/:id/switch and issues a token for the target tenant.
func (h *Handler) Switch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	t, err := h.svc.SwitchTenant(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if t.Status != models.StatusActive {
		response.Forbidden(c, "tenant is disabled")
		return
	}
	token, claims, err := h.jwt.Generate(userID, t.ID)
	if err != nil {
		h.logger.Error("sign token failed", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, SwitchResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, Tenant: t})
}

// Platform handles GET /api/tenants/platform.
func (h *Handler) Platform(c *gin.Context) {
	t, err := h.platform.GetPlatformTenant(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// PlatformMe handles GET /api/tenants/platform/me.
func (h *Handler) PlatformMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	member, err := h.platform.IsPlatformMember(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	admin, err := h.platform.IsPlatformAdmin(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"member": member, "admin": admin})
}

// AddPlatformMember handles POST /api/tenants/platform/members (platform admin).
func (h *Handler) AddPlatformMember(c *gin.Context) {
	var req AddPlatformMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.platform.AddPlatformMember(c.Request.Context(), req.UserID, req.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

// CreateOrgUnit handles POST /api/org-units.
func (h *Handler) CreateOrgUnit(c *gin.Context) {
	var req CreateOrgUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	unit, err := h.orgs.CreateOrgUnit(c.Request.Context(), tenantID, req.ParentID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, unit)
}

// ListOrgUnits handles GET /api/org-units.
func (h *Handler) ListOrgUnits(c *gin.Context) {
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.orgs.ListOrgUnits(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateOrgUnit handles PATCH /api/org-units/:id. Requires RequireOrgUnitInTenant.
func (h *Handler) UpdateOrgUnit(c *gin.Context) {
	unit := c.MustGet(ContextOrgUnit).(*models.OrganizationUnit)
	var req UpdateOrgUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.orgs.UpdateOrgUnit(c.Request.Context(), unit.ID, req.Name, req.SortOrder)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated)
}

// DeleteOrgUnit handles DELETE /api/org-units/:id. Requires RequireOrgUnitInTenant.
func (h *Handler) DeleteOrgUnit(c *gin.Context) {
	unit := c.MustGet(ContextOrgUnit).(*models.OrganizationUnit)
	if err := h.orgs.DeleteOrgUnit(c.Request.Context(), unit.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// OrgTree handles GET /api/org-tree.
func (h *Handler) OrgTree(c *gin.Context) {
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	tree, err := h.orgs.GetOrgTree(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tree)
}
