package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	ReportsCreated      int64
	BroadcastsSent      int64
	BroadcastFailures   int64
	TextFallbacks       int64
	ImageFallbacks      int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Status code tracking
	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// Rate limit metrics
	RateLimitIPBlocks       int64
	RateLimitReporterBlocks int64
	RateLimitRedisErrors    int64
	RateLimitFallbackCount  int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementReportsCreated increments the persisted report count
func (m *Metrics) IncrementReportsCreated() {
	atomic.AddInt64(&m.ReportsCreated, 1)
}

// IncrementBroadcasts increments the live-feed broadcast count
func (m *Metrics) IncrementBroadcasts() {
	atomic.AddInt64(&m.BroadcastsSent, 1)
}

// IncrementBroadcastFailures increments the per-viewer delivery failure count
func (m *Metrics) IncrementBroadcastFailures() {
	atomic.AddInt64(&m.BroadcastFailures, 1)
}

// IncrementTextFallbacks counts text scorer fallback substitutions
func (m *Metrics) IncrementTextFallbacks() {
	atomic.AddInt64(&m.TextFallbacks, 1)
}

// IncrementImageFallbacks counts image scorer fallback substitutions
func (m *Metrics) IncrementImageFallbacks() {
	atomic.AddInt64(&m.ImageFallbacks, 1)
}

// IncrementRateLimitIPBlock counts requests rejected by the IP limiter
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

// IncrementRateLimitReporterBlock counts requests rejected by the
// per-reporter daily cap
func (m *Metrics) IncrementRateLimitReporterBlock() {
	atomic.AddInt64(&m.RateLimitReporterBlocks, 1)
}

// IncrementRateLimitRedisError counts Redis failures during limit checks
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

// IncrementRateLimitFallback counts in-memory fallback limit checks
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
}

// RecordResponseTime records response time for averaging
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)
}

// RecordRequestByStatus tracks request counts per HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetStats returns a snapshot of all metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.StatusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		byStatus[code] = count
	}
	m.StatusMutex.RUnlock()

	return map[string]interface{}{
		"request_count":              atomic.LoadInt64(&m.RequestCount),
		"error_count":                atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":                 atomic.LoadInt64(&m.CacheHits),
		"cache_misses":               atomic.LoadInt64(&m.CacheMisses),
		"reports_created":            atomic.LoadInt64(&m.ReportsCreated),
		"broadcasts_sent":            atomic.LoadInt64(&m.BroadcastsSent),
		"broadcast_failures":         atomic.LoadInt64(&m.BroadcastFailures),
		"text_scorer_fallbacks":      atomic.LoadInt64(&m.TextFallbacks),
		"image_scorer_fallbacks":     atomic.LoadInt64(&m.ImageFallbacks),
		"rate_limit_ip_blocks":       atomic.LoadInt64(&m.RateLimitIPBlocks),
		"rate_limit_reporter_blocks": atomic.LoadInt64(&m.RateLimitReporterBlocks),
		"rate_limit_redis_errors":    atomic.LoadInt64(&m.RateLimitRedisErrors),
		"rate_limit_fallbacks":       atomic.LoadInt64(&m.RateLimitFallbackCount),
		"avg_response_time_ms":       time.Duration(atomic.LoadInt64(&m.AverageResponseTime)).Milliseconds(),
		"requests_by_status":         byStatus,
		"uptime_seconds":             time.Since(m.StartTime).Seconds(),
	}
}
