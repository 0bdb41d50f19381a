package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/metrics"
)

// Metrics records count and latency for every request and stamps
// X-Response-Time-Ms just before the first byte of the response is written.
// Exempt paths (long-lived connections like the websocket upgrade, whose
// handler returns only when the session ends) are not recorded at all.
func Metrics(collector *metrics.Collector, exempt ...string) gin.HandlerFunc {
	exemptPaths := make(map[string]bool, len(exempt))
	for _, path := range exempt {
		exemptPaths[path] = true
	}

	return func(c *gin.Context) {
		if exemptPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()

		writer := &timedWriter{ResponseWriter: c.Writer, start: start}
		c.Writer = writer

		c.Next()

		collector.Record(c.Request.URL.Path, time.Since(start))
	}
}

// timedWriter injects the response-time header before headers are flushed.
type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped || w.Written() {
		w.stamped = true
		return
	}
	w.stamped = true

	ms := float64(time.Since(w.start).Microseconds()) / 1000.0
	w.Header().Set("X-Response-Time-Ms", strconv.FormatFloat(ms, 'f', 2, 64))
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

var _ http.ResponseWriter = (*timedWriter)(nil)
