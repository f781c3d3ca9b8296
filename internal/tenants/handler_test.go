package tenants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/internal/auth"
	"github.com/aura-platform/usercenter/internal/middleware"
	"github.com/aura-platform/usercenter/pkg/response"
)

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, f.orgs, f.platform, auth.NewJWTService("secret", 1, "test"), zap.NewNop())
	r := gin.New()
	r.Use(middleware.Tenant("/api/tenants"))
	r.POST("/api/tenants", h.Create)
	r.GET("/api/tenants", h.ListBusiness)
	r.POST("/api/org-units", h.CreateOrgUnit)
	r.GET("/api/org-tree", h.OrgTree)
	units := r.Group("/api/org-units/:id", RequireOrgUnitInTenant(f.orgs))
	units.PATCH("", h.UpdateOrgUnit)
	units.DELETE("", h.DeleteOrgUnit)
	return r
}

func do(r http.Handler, method, path, tenant, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set(middleware.HeaderTenantID, tenant)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTenantHTTP(t *testing.T) {
	f := newFixture()
	r := newTestRouter(f)

	w := do(r, http.MethodPost, "/api/tenants", "", `{"code":"acme","name":"Acme"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/tenants", "", `{"code":"acme","name":"Again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DUPLICATE_TENANT", body.Code)

	w = do(r, http.MethodPost, "/api/tenants", "", `{"code":"__platform__","name":"Sneaky"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/tenants", "", `{"code":"ops","name":"Ops","type":"PLATFORM"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrgUnitRoutesRequireTenant(t *testing.T) {
	r := newTestRouter(newFixture())
	w := do(r, http.MethodGet, "/api/org-tree", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrgUnitOfAnotherTenantIsRejected(t *testing.T) {
	f := newFixture()
	r := newTestRouter(f)
	owner, other := uuid.New(), uuid.New()
	unit, err := f.orgs.CreateOrgUnit(context.Background(), owner, nil, "Root")
	require.NoError(t, err)

	w := do(r, http.MethodPatch, "/api/org-units/"+unit.ID.String(), other.String(), `{"name":"Taken"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(r, http.MethodDelete, "/api/org-units/"+unit.ID.String(), other.String(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPatch, "/api/org-units/"+unit.ID.String(), owner.String(), `{"name":"HQ"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	got, err := f.orgs.GetOrgUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Equal(t, "HQ", got.Name)

	w = do(r, http.MethodDelete, "/api/org-units/not-a-uuid", owner.String(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrgTreeHTTP(t *testing.T) {
	f := newFixture()
	r := newTestRouter(f)
	tenant := uuid.NewString()

	w := do(r, http.MethodPost, "/api/org-units", tenant, `{"name":"Root"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/org-tree", tenant, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []struct {
			Name     string        `json:"name"`
			Children []interface{} `json:"children"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Root", body.Data[0].Name)
}
