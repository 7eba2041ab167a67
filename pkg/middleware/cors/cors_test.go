package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/catalog/curricula", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSAllowsAnyOriginWhenUnconfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/catalog/curricula", nil)
	req.Header.Set("Origin", "https://example.org")
	newRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSRestrictsToConfiguredOrigins(t *testing.T) {
	r := newRouter([]string{"https://records.example.org/"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/catalog/curricula", nil)
	req.Header.Set("Origin", "https://records.example.org")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://records.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/catalog/curricula", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/catalog/curricula", nil)
	newRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
