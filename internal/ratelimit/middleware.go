package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/synapse-hq/synapse-hazard-api/internal/errors"
)

// SubmissionRateLimitMiddleware limits report submissions per client IP. A
// rate limiter failure never blocks the request; the check is advisory when
// the backend is down.
func (rl *RateLimiter) SubmissionRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		result, err := rl.AllowIP(ctx, ip)
		if err != nil {
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
			}

			retryAfter := strconv.Itoa(int(result.RetryAfter.Seconds()))
			c.Header("Retry-After", retryAfter)

			appErr := apperrors.NewRateLimitError(retryAfter)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ReporterRateLimitMiddleware caps submissions per reporter id per day. The
// id is optional in the submit form; anonymous reports are covered by the IP
// limit alone.
func (rl *RateLimiter) ReporterRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reporterID := c.PostForm("reporter_id")
		if reporterID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		result, err := rl.AllowReporter(ctx, reporterID)
		if err != nil {
			slog.Error("Reporter rate limit check failed", "reporter_id", reporterID, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Reporter-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Reporter-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reporter-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitReporterBlock()
			}

			retryAfter := strconv.Itoa(int(result.RetryAfter.Seconds()))
			c.Header("Retry-After", retryAfter)

			appErr := apperrors.NewRateLimitError(retryAfter)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			c.Abort()
			return
		}

		c.Next()
	}
}
