package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterShareRoutes 注册分享相关路由，挂在统一资源路径之下.
func RegisterShareRoutes(g *gin.RouterGroup) {
	shareRoutes := g.Group("/resources/:type/:id")
	{
		// 匿名链接
		linkGroup := shareRoutes.Group("/link")
		{
			linkGroup.PUT("", handle.UpsertLink)
			linkGroup.GET("", handle.DescribeLink)
			linkGroup.DELETE("", handle.RevokeLink)
		}

		// 邮箱授权
		grantGroup := shareRoutes.Group("/grants")
		{
			grantGroup.PUT("", handle.UpsertGrant)
			grantGroup.GET("", handle.ListGrants)
			grantGroup.DELETE("/:email", handle.RevokeGrant)
		}
	}
}
