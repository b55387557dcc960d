package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/log"
)

// GinLoggerMiddleware 用 zerolog 记录每个请求的访问日志.
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		event := log.Logger().Info().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP())

		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}
