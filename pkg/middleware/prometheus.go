package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/metrics"
)

// PrometheusMiddleware 记录请求计数与时延.
// endpoint 标签使用路由模板（/trash/:type/:id），避免资源 ID 撑爆标签基数.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		method := c.Request.Method
		metrics.RequestCounter.WithLabelValues(method, endpoint).Inc()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
