package identity

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/ephemeral"
	"github.com/aura-platform/usercenter/internal/middleware"
	"github.com/aura-platform/usercenter/internal/tenantctx"
	"github.com/aura-platform/usercenter/pkg/apperr"
	"github.com/aura-platform/usercenter/pkg/response"
)

// RegisterRequest is the body for POST /api/identities/register.
type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"required,min=6"`
}

// SendCodeRequest is the body for POST /api/identities/otp/send.
type SendCodeRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

// VerifyCodeRequest is the body for POST /api/identities/otp/verify.
type VerifyCodeRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// AddMembershipRequest is the body for POST /api/memberships.
type AddMembershipRequest struct {
	UserID    uuid.UUID  `json:"user_id" binding:"required"`
	OrgUnitID *uuid.UUID `json:"org_unit_id"`
	Roles     []string   `json:"roles"`
}

// BindRolesRequest is the body for PUT /api/memberships/:id/roles.
type BindRolesRequest struct {
	Roles []string `json:"roles"`
}

// OTPOptions controls codes issued over HTTP.
type OTPOptions struct {
	Length int
	TTL    time.Duration
}

// Handler handles identity and membership HTTP endpoints.
type Handler struct {
	svc    *Service
	codes  *ephemeral.VerificationCodes
	sender CodeSender
	otp    OTPOptions
	logger *zap.Logger
}

// NewHandler creates an identity handler.
func NewHandler(svc *Service, codes *ephemeral.VerificationCodes, sender CodeSender, otp OTPOptions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, codes: codes, sender: sender, otp: otp, logger: logger}
}

// Register handles POST /api/identities/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.svc.RegisterUser(c.Request.Context(), RegisterParams{
		TenantID:    tenantID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// FindByEmail handles GET /api/identities?email=.
func (h *Handler) FindByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.svc.FindByEmail(c.Request.Context(), tenantID, email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Me handles GET /api/identities/me. Requires the JWT middleware.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	user, err := h.svc.FindByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// MyMemberships handles GET /api/identities/me/memberships.
func (h *Handler) MyMemberships(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.svc.ListMemberships(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// SendCode handles POST /api/identities/otp/send.
func (h *Handler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	code, err := h.codes.IssueCode(c.Request.Context(), req.Receiver, req.Type, h.otp.Length, h.otp.TTL)
	if err != nil {
		h.logger.Error("issue code failed", zap.Error(err))
		response.Internal(c, "failed to issue code")
		return
	}
	if err := h.sender.SendCode(c.Request.Context(), req.Receiver, req.Type, code); err != nil {
		h.logger.Error("send code failed", zap.Error(err))
		response.Internal(c, "failed to send code")
		return
	}
	response.OK(c, gin.H{"expires_in": int(h.otp.TTL.Seconds())})
}

// VerifyCode handles POST /api/identities/otp/verify.
func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ok, err := h.codes.Verify(c.Request.Context(), req.Receiver, req.Type, req.Code)
	if err != nil {
		h.logger.Error("verify code failed", zap.Error(err))
		response.Internal(c, "failed to verify code")
		return
	}
	response.OK(c, gin.H{"verified": ok})
}

// AddMembership handles POST /api/memberships.
func (h *Handler) AddMembership(c *gin.Context) {
	var req AddMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.AddMembership(c.Request.Context(), req.UserID, tenantID, req.OrgUnitID, req.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

// BindRoles handles PUT /api/memberships/:id/roles.
func (h *Handler) BindRoles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}
	var req BindRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, err := tenantctx.RequireTenantID(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	current, err := h.svc.GetMembership(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.TenantID != tenantID {
		response.Error(c, apperr.ErrTenantMismatch)
		return
	}
	m, err := h.svc.BindRole(c.Request.Context(), id, req.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}
