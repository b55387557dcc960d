package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/storage"
)

// StorageMiddleware 把存储 Manager 注入请求 context，
// service 层按请求从中构建.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(
			context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
