// Package handle 提供请求处理器的实现，负责 DTO 绑定、身份提取与错误翻译.
// 业务规则全部在 service 层，这里不做任何授权判定.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/middleware"
)

// principal 获取当前调用方身份（可能为匿名）.
func principal(c *gin.Context) authz.Principal {
	return middleware.GetPrincipal(c)
}

// shareToken 从查询参数提取链接令牌.
func shareToken(c *gin.Context) string {
	return c.Query("t")
}

// resourceRef 从路径参数解析资源引用，类型非法时返回 ok=false 并已写出 400.
func resourceRef(c *gin.Context) (authz.ResourceRef, bool) {
	rt, ok := authz.ParseResourceType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be file or folder"})
		return authz.ResourceRef{}, false
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return authz.ResourceRef{}, false
	}

	return authz.ResourceRef{Type: rt, ID: id}, true
}

// writeError 将 fault 错误翻译为 HTTP 响应.
// 映射关系固定：not_found->404、forbidden->403、conflict->409、
// transient->503（带重试提示）、partial->207（带失败子项清单）.
func writeError(c *gin.Context, err error) {
	kind := fault.KindOf(err)

	switch kind {
	case fault.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case fault.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case fault.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case fault.KindTransient:
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true})
	case fault.KindPartial:
		c.JSON(http.StatusMultiStatus, gin.H{"error": err.Error(), "failed": fault.FailedItems(err)})
	default:
		nlog.Logger().Error().Err(err).Str("path", c.FullPath()).Msg("unclassified error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
