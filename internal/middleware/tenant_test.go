package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/aura-platform/usercenter/internal/tenantctx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTenantRouter() *gin.Engine {
	r := gin.New()
	r.Use(Tenant("/api/tenants"))
	echo := func(c *gin.Context) {
		id, _ := tenantctx.TenantID(c.Request.Context())
		c.String(http.StatusOK, id)
	}
	r.GET("/api/things", echo)
	r.GET("/api/tenants", echo)
	r.GET("/api/tenants/platform", echo)
	r.GET("/api/tenantsX", echo)
	r.GET("/health", echo)
	return r
}

func TestTenantHeaderRequiredUnderAPI(t *testing.T) {
	r := newTenantRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	req.Header.Set(HeaderTenantID, "   ")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantHeaderBoundToContext(t *testing.T) {
	r := newTenantRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	req.Header.Set(HeaderTenantID, " t-1 ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", w.Body.String())
}

func TestTenantExemptPaths(t *testing.T) {
	r := newTenantRouter()
	for _, path := range []string{"/api/tenants", "/api/tenants/platform", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
	}
}

func TestTenantExemptionMatchesPathSegments(t *testing.T) {
	r := newTenantRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenantsX", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.True(t, requiresTenant("/api/tenants-archive/1", []string{"/api/tenants"}))
	assert.True(t, requiresTenant("/api", nil))
	assert.False(t, requiresTenant("/apidocs", nil))
	assert.False(t, requiresTenant("/api/tenants/", []string{"/api/tenants/"}))
}

func TestTenantDoesNotLeakBetweenRequests(t *testing.T) {
	r := newTenantRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	req.Header.Set(HeaderTenantID, "t-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))
	assert.Empty(t, w.Body.String())
}
