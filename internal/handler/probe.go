package handler

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/circuitbreaker"
	"github.com/deployprobe/deployprobe/internal/probe"
)

const defaultSlowProbeURL = "https://httpbin.org/delay/1"

// ProbeHandler serves the latency and error simulation endpoints.
type ProbeHandler struct {
	client     *probe.Client
	defaultURL string
}

func NewProbeHandler(client *probe.Client, defaultURL string) *ProbeHandler {
	return &ProbeHandler{
		client:     client,
		defaultURL: defaultURL,
	}
}

// Fast handles GET /fast
func (h *ProbeHandler) Fast(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "fast response"})
}

type slowRequest struct {
	Mode     string   `json:"mode"`
	SleepSec *float64 `json:"sleep_sec"`
	URL      string   `json:"url"`
}

// Slow handles POST /slow. Mode "sleep" (default) waits, mode "http" makes
// one outbound call.
func (h *ProbeHandler) Slow(c *gin.Context) {
	var req slowRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
		return
	}

	started := time.Now()

	if req.Mode == "http" {
		url := req.URL
		if url == "" {
			url = defaultSlowProbeURL
		}

		result, err := h.client.Get(c.Request.Context(), url)
		if err != nil {
			h.renderProbeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mode":        "http",
			"url":         url,
			"elapsed_sec": round3(time.Since(started).Seconds()),
			"data":        result.Data,
		})
		return
	}

	sleepFor := 1.0 + rand.Float64()
	if req.SleepSec != nil && *req.SleepSec >= 0 {
		sleepFor = *req.SleepSec
	}

	timer := time.NewTimer(time.Duration(sleepFor * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-c.Request.Context().Done():
		// Client went away; nothing left to report to.
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":        "sleep",
		"sleep_sec":   round3(sleepFor),
		"elapsed_sec": round3(time.Since(started).Seconds()),
	})
}

// External handles GET /external
func (h *ProbeHandler) External(c *gin.Context) {
	url := c.DefaultQuery("url", h.defaultURL)

	result, err := h.client.Get(c.Request.Context(), url)
	if err != nil {
		h.renderProbeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_code": result.StatusCode,
		"url":         url,
		"headers":     result.Headers,
		"json":        result.Data,
	})
}

// Error404 handles GET /error/404
func (h *ProbeHandler) Error404(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "simulated_not_found"})
}

// Error500 handles GET /error/500. The panic is deliberate: it exercises the
// recovery middleware end to end.
func (h *ProbeHandler) Error500(c *gin.Context) {
	panic("simulated_internal_error")
}

func (h *ProbeHandler) renderProbeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, probe.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_url"})
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream_circuit_open"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
