package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-platform/usercenter/internal/middleware"
	"github.com/aura-platform/usercenter/pkg/response"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService())
	r := gin.New()
	r.Use(middleware.Tenant())
	r.POST("/api/access/roles", h.CreateRole)
	r.GET("/api/access/roles", h.ListRoles)
	return r
}

func postRole(r http.Handler, tenant, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/access/roles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderTenantID, tenant)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRoleHTTP(t *testing.T) {
	r := newTestRouter()
	tenant := uuid.NewString()

	w := postRole(r, tenant, `{"code":"admin","name":"Admin"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postRole(r, tenant, `{"code":"admin","name":"Admin"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DUPLICATE_CODE", body.Code)
}

func TestCreateRoleHTTPInvalidTenant(t *testing.T) {
	r := newTestRouter()

	w := postRole(r, "not-a-uuid", `{"code":"admin","name":"Admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postRole(r, "", `{"code":"admin","name":"Admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
