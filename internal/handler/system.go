package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/circuitbreaker"
	"github.com/deployprobe/deployprobe/internal/healthcheck"
	"github.com/deployprobe/deployprobe/internal/metrics"
	"github.com/deployprobe/deployprobe/internal/platform"
	"github.com/deployprobe/deployprobe/internal/ratelimit"
	"github.com/deployprobe/deployprobe/internal/sysinfo"
)

// SystemHandler serves the liveness and introspection endpoints.
type SystemHandler struct {
	version   string
	collector *metrics.Collector
	checker   *healthcheck.Checker
	limiter   ratelimit.Limiter
	breaker   *circuitbreaker.CircuitBreaker
}

func NewSystemHandler(version string, collector *metrics.Collector, checker *healthcheck.Checker, limiter ratelimit.Limiter, breaker *circuitbreaker.CircuitBreaker) *SystemHandler {
	return &SystemHandler{
		version:   version,
		collector: collector,
		checker:   checker,
		limiter:   limiter,
		breaker:   breaker,
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	overall := h.checker.Overall()

	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":     overall.String(),
		"uptime_sec": round2(h.collector.Uptime().Seconds()),
		"platform":   platform.Detect(),
		"stats":      sysinfo.Collect(),
		"version":    h.version,
		"go":         runtime.Version(),
	})
}

// Platform handles GET /platform
func (h *SystemHandler) Platform(c *gin.Context) {
	c.JSON(http.StatusOK, platform.Detect())
}

// AdminStatus handles GET /admin/status
func (h *SystemHandler) AdminStatus(c *gin.Context) {
	rateLimitKeys := -1
	if counter, ok := h.limiter.(ratelimit.KeyCounter); ok {
		rateLimitKeys = counter.Keys()
	}

	breakerMetrics := h.breaker.Metrics()

	c.JSON(http.StatusOK, gin.H{
		"uptime_sec":      round2(h.collector.Uptime().Seconds()),
		"goroutines":      runtime.NumGoroutine(),
		"rate_limit_keys": rateLimitKeys,
		"circuit_breaker": gin.H{
			"state":   breakerMetrics.State.String(),
			"metrics": breakerMetrics,
		},
		"external_targets": h.checker.Statuses(),
	})
}
