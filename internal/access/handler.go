package access

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-platform/usercenter/pkg/response"
)

// CreateRoleRequest is the body for POST /api/access/roles.
type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreatePermissionRequest is the body for POST /api/access/permissions.
type CreatePermissionRequest struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
}

// BindPermissionRequest is the body for POST /api/access/roles/:id/permissions.
type BindPermissionRequest struct {
	PermissionID uuid.UUID `json:"permission_id" binding:"required"`
}

// Handler handles RBAC HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an access handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRole handles POST /api/access/roles.
func (h *Handler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role, err := h.svc.CreateRole(c.Request.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// ListRoles handles GET /api/access/roles.
func (h *Handler) ListRoles(c *gin.Context) {
	list, err := h.svc.ListRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// CreatePermission handles POST /api/access/permissions.
func (h *Handler) CreatePermission(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.svc.CreatePermission(c.Request.Context(), req.Code, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// ListPermissions handles GET /api/access/permissions.
func (h *Handler) ListPermissions(c *gin.Context) {
	list, err := h.svc.ListPermissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// BindPermission handles POST /api/access/roles/:id/permissions.
func (h *Handler) BindPermission(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	var req BindPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rp, err := h.svc.BindPermission(c.Request.Context(), roleID, req.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rp)
}

// PermissionsOfRole handles GET /api/access/roles/:id/permissions.
func (h *Handler) PermissionsOfRole(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	list, err := h.svc.PermissionsOfRole(c.Request.Context(), roleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
