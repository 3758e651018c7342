package handlers

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"microblog/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRouter_Health(t *testing.T) {
	env := setupTestHandler(t)

	w := env.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), `"redis":"unreachable"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	env := setupTestHandler(t)
	env.do("GET", "/health", nil)

	w := env.do("GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `microblog_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "microblog_posts_created_total 0")
}

func TestRouter_ContentLanguage(t *testing.T) {
	env := setupTestHandler(t)

	w := env.do("GET", "/health", nil, "Accept-Language", "es-MX,es;q=0.8")
	assert.Equal(t, "es", w.Header().Get("Content-Language"))

	w = env.do("GET", "/health", nil, "Accept-Language", "fr")
	assert.Equal(t, "en", w.Header().Get("Content-Language"))
}

func TestRouter_RateLimit(t *testing.T) {
	env := setupTestHandler(t)
	env.r = env.h.SetupRouter(services.NewKeyedRateLimiter(rate.Limit(0.001), 1, slog.Default()))

	assert.Equal(t, http.StatusOK, env.do("GET", "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do("GET", "/health", nil).Code)

	// Forwarding headers from an untrusted peer do not reset the bucket
	assert.Equal(t, http.StatusTooManyRequests, env.do("GET", "/health", nil, "X-Forwarded-For", "203.0.113.9").Code)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.h.metrics.rateLimitHits.WithLabelValues("/health")))
}

func TestRouter_Recovery(t *testing.T) {
	env := setupTestHandler(t)
	env.r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := env.do("GET", "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Eventually(t, func() bool {
		msgs := env.mail.messages()
		return len(msgs) == 1 && msgs[0].To[0] == "admin@example.com"
	}, time.Second, 10*time.Millisecond)
}
