package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skin-wellness-navigator/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pingRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestSecurityHeaders(t *testing.T) {
	w := performRequest(pingRouter(SecurityHeaders()), nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, w.Header().Get("Referrer-Policy"))
}

func TestCorrelationIDGenerated(t *testing.T) {
	w := performRequest(pingRouter(CorrelationID()), nil)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestCorrelationIDPreserved(t *testing.T) {
	w := performRequest(pingRouter(CorrelationID()), map[string]string{
		"X-Correlation-ID": "client-supplied-id",
	})
	assert.Equal(t, "client-supplied-id", w.Header().Get("X-Correlation-ID"))
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	router := gin.New()
	router.Use(RequestTimeout(5 * time.Second))

	var deadline time.Time
	var hasDeadline bool
	router.GET("/ping", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline, "handler context should carry a deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestRequestTimeoutExpiredContext(t *testing.T) {
	router := gin.New()
	router.Use(RequestTimeout(time.Nanosecond))

	var ctxErr error
	router.GET("/ping", func(c *gin.Context) {
		time.Sleep(10 * time.Millisecond)
		ctxErr = c.Request.Context().Err()
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(domain.RateLimitConfig{RequestsPerSecond: 1, Burst: 3})
	router := pingRouter(limiter.Handler())

	for i := 0; i < 3; i++ {
		w := performRequest(router, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	limiter := NewRateLimiter(domain.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	router := pingRouter(limiter.Handler())

	first := performRequest(router, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := performRequest(router, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, second.Body.String())
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(domain.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
}
