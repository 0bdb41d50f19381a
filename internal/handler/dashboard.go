package handler

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/platform"
)

//go:embed dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// DashboardHandler serves the single-page endpoint explorer.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Index handles GET /
func (h *DashboardHandler) Index(c *gin.Context) {
	info := platform.Detect()

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	if err := dashboardTemplate.Execute(c.Writer, info); err != nil {
		// Headers are already out; nothing more to do than drop the conn.
		c.Abort()
	}
}
