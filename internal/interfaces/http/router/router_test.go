package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRegistrar struct {
	registered bool
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	s.registered = true
	rg.GET("/stub", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func TestRouter_SetupRegistersAtRoot(t *testing.T) {
	engine := gin.New()
	registrar := &stubRegistrar{}

	NewRouter(engine).Register(registrar).Setup()

	assert.True(t, registrar.registered)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stub", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
