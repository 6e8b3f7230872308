package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
)

func newMiddlewareRouter(limiter *RateLimiter, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/submit", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func postForm(t *testing.T, r *gin.Engine, fields url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/submit", strings.NewReader(fields.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestReporterBlockUsesReporterMetric(t *testing.T) {
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(NewDisabledRedisClient(), Config{
		SubmitLimitPerMin:   1000,
		ReporterLimitPerDay: 1,
		BurstMultiplier:     1,
	}, metrics)
	r := newMiddlewareRouter(limiter, limiter.ReporterRateLimitMiddleware())

	fields := url.Values{"reporter_id": {"reporter-7"}}

	// The fallback bucket floors burst at 5, so the sixth submission is the
	// first one rejected.
	for i := 0; i < 5; i++ {
		w := postForm(t, r, fields)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := postForm(t, r, fields)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body struct {
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit", body.Category)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats["rate_limit_reporter_blocks"])
	assert.Equal(t, int64(0), stats["rate_limit_ip_blocks"],
		"the daily cap must not show up as an IP block")
}

func TestReporterMiddlewareSkipsAnonymous(t *testing.T) {
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(NewDisabledRedisClient(), Config{
		SubmitLimitPerMin:   1000,
		ReporterLimitPerDay: 1,
		BurstMultiplier:     1,
	}, metrics)
	r := newMiddlewareRouter(limiter, limiter.ReporterRateLimitMiddleware())

	for i := 0; i < 10; i++ {
		w := postForm(t, r, url.Values{})
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int64(0), metrics.GetStats()["rate_limit_reporter_blocks"])
}

func TestSubmissionBlockUsesIPMetric(t *testing.T) {
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(NewDisabledRedisClient(), Config{
		SubmitLimitPerMin:   1,
		ReporterLimitPerDay: 1000,
		BurstMultiplier:     1,
	}, metrics)
	r := newMiddlewareRouter(limiter, limiter.SubmissionRateLimitMiddleware())

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = postForm(t, r, url.Values{})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)

	var body struct {
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit", body.Category)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats["rate_limit_ip_blocks"])
	assert.Equal(t, int64(0), stats["rate_limit_reporter_blocks"])
}
