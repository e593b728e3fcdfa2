package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeLimiter struct {
	allowed   bool
	remaining int
	err       error
	keys      []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.remaining, f.err
}

func (f *fakeLimiter) Limit() int { return 100 }

func limiterEngine(limiter RateLimiter) *gin.Engine {
	engine := gin.New()
	engine.Use(RateLimit(limiter, zap.NewNop()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func TestRateLimit_AllowsWithinWindow(t *testing.T) {
	limiter := &fakeLimiter{allowed: true, remaining: 41}
	w := httptest.NewRecorder()
	limiterEngine(limiter).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "41", w.Header().Get("X-RateLimit-Remaining"))
	assert.Len(t, limiter.keys, 1)
}

func TestRateLimit_RejectsWhenExhausted(t *testing.T) {
	limiter := &fakeLimiter{allowed: false, remaining: 0}
	w := httptest.NewRecorder()
	limiterEngine(limiter).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimit_FailsOpenOnBackendError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	w := httptest.NewRecorder()
	limiterEngine(limiter).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
