package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/metrics"
)

// MetricsHandler serves the in-memory request metrics.
type MetricsHandler struct {
	collector *metrics.Collector
}

func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{collector: collector}
}

// Get handles GET /metrics
func (h *MetricsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Snapshot())
}

// Reset handles POST /admin/metrics/reset
func (h *MetricsHandler) Reset(c *gin.Context) {
	h.collector.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "metrics_reset"})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
