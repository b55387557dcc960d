package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站相关路由.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trashRoutes := g.Group("/trash")
	{
		// 回收站列表
		trashRoutes.GET("", handle.ListTrash)
		// 手动触发过期清理
		trashRoutes.POST("/auto-clean", handle.AutoCleanTrash)

		itemGroup := trashRoutes.Group("/:type/:id")
		{
			// 恢复
			itemGroup.POST("/restore", handle.RestoreResource)
			// 彻底删除
			itemGroup.DELETE("", handle.PurgeResource)
		}
	}
}
