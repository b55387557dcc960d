package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
)

// 身份由前置的 oauth2-proxy 认证，应用只信任它注入的邮箱请求头.
const (
	headerAuthRequestEmail = "X-Auth-Request-Email"
	headerForwardedEmail   = "X-Forwarded-Email"
)

// AuthMiddleware 校验请求已通过前置认证.
// skip_paths 里的前缀（/metrics、/health 等）放行；
// 开发模式下 dev_allow_query 允许用 ?user= 兜底.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		email := strings.TrimSpace(c.GetHeader(headerAuthRequestEmail))
		if email == "" {
			email = strings.TrimSpace(c.GetHeader(headerForwardedEmail))
		}

		if email != "" {
			c.Next()
			return
		}

		if conf.DevAllowQuery && c.Query("user") != "" {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
