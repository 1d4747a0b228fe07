package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/observability"
)

// Probe and scrape traffic would drown the API histograms.
var unmeteredRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Metrics records request counts and latency per matched route.
// Requests that match no route are grouped under "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unmeteredRoutes[c.FullPath()] {
			c.Next()
			return
		}
		m.APIInflightInc()
		start := time.Now()
		c.Next()
		m.APIInflightDec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
