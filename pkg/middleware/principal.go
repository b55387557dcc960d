// Package middleware 提供调用方身份相关的中间件和辅助方法。
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/authz"
)

type principalKey struct{}

// parsePrincipal 从 oauth2-proxy 注入的请求头解析调用方身份。
// 无任何身份头时返回匿名 principal（零值），匿名请求仍可凭链接令牌访问.
func parsePrincipal(c *gin.Context) authz.Principal {
	id := strings.TrimSpace(c.GetHeader("X-Auth-Request-User"))
	if id == "" {
		id = strings.TrimSpace(c.GetHeader("X-Forwarded-User"))
	}

	email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	// 只有邮箱头的部署（常见的 oauth2-proxy 配置）以邮箱作为身份
	if id == "" {
		id = email
	}

	// 开发模式兜底，与 AuthMiddleware 的放行规则一致
	if id == "" && configs.GetConfig().Auth.DevAllowQuery {
		id = strings.TrimSpace(c.Query("user"))
	}

	return authz.Principal{ID: id, Email: email}
}

// PrincipalMiddleware 解析身份头并注入到 gin.Context 和 request.Context。
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := parsePrincipal(c)
		// 保存到 gin context
		c.Set("principal", p)
		// 也保存到 request context，便于下游 service 获取
		ctx := context.WithValue(c.Request.Context(), principalKey{}, p)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetPrincipal 从 gin.Context 获取当前调用方身份。
func GetPrincipal(c *gin.Context) authz.Principal {
	if v, ok := c.Get("principal"); ok {
		if p, ok2 := v.(authz.Principal); ok2 {
			return p
		}
	}
	// 回退到 request context
	if v := c.Request.Context().Value(principalKey{}); v != nil {
		if p, ok := v.(authz.Principal); ok {
			return p
		}
	}

	return authz.Principal{}
}
