package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parquet-dataset/internal/metrics"
)

// PrometheusMiddleware records request count, latency and sizes on m,
// labelled by route template.
func PrometheusMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		m.RecordRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			c.Request.ContentLength,
			int64(c.Writer.Size()),
		)
	}
}
