package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
)

func newFallbackLimiter(config Config) *RateLimiter {
	return NewRateLimiter(&RedisClient{enabled: false}, config, monitoring.NewMetrics())
}

func TestFallbackLimiterBlocksAfterBurst(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		SubmitLimitPerMin:   3,
		ReporterLimitPerDay: 50,
		BurstMultiplier:     2,
	})

	ctx := context.Background()

	// The token bucket starts full at burst capacity (limit * multiplier,
	// floored at 5). Refill over a minute is negligible within the loop.
	allowed := 0
	for i := 0; i < 10; i++ {
		result, err := limiter.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		if result.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 6, allowed)

	result, err := limiter.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
}

func TestFallbackLimiterIsolatesKeys(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		limiter.AllowIP(ctx, "10.0.0.1")
	}

	result, err := limiter.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, result.Allowed, "a busy neighbour must not exhaust another IP's bucket")
}

func TestReporterLimitSeparateFromIP(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	ctx := context.Background()

	ipResult, err := limiter.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	reporterResult, err := limiter.AllowReporter(ctx, "reporter-42")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().SubmitLimitPerMin, ipResult.Limit)
	assert.Equal(t, DefaultConfig().ReporterLimitPerDay, reporterResult.Limit)
}

func TestGetStatsWithoutRedis(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())

	limiter.AllowIP(context.Background(), "10.0.0.1")

	stats := limiter.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}
