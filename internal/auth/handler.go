package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/pkg/response"
)

// ContextClaims is the gin context key holding the validated *Claims.
const ContextClaims = "auth_claims"

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Logout handles POST /api/auth/logout. Requires the JWT middleware.
func (h *Handler) Logout(c *gin.Context) {
	v, ok := c.Get(ContextClaims)
	claims, _ := v.(*Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, "missing user context")
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.Internal(c, "failed to revoke session")
		return
	}
	response.NoContent(c)
}
