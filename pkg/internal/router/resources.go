package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterResourceRoutes 注册资源操作相关路由.
func RegisterResourceRoutes(g *gin.RouterGroup) {
	// 文件夹操作路由
	foldersRoutes := g.Group("/folders")
	{
		// 创建文件夹
		foldersRoutes.POST("", handle.CreateFolder)
		// 列出直接子项，id 为 root 时表示调用方根目录
		foldersRoutes.GET("/:id/children", handle.ListChildren)
	}

	// 文件操作路由
	filesRoutes := g.Group("/files")
	{
		// 登记文件（生成预签名上传 URL）
		filesRoutes.POST("", handle.RegisterFile)
		// 下载文件（生成预签名下载 URL）
		filesRoutes.GET("/:id/download", handle.DownloadFile)
	}

	// 统一的资源路由，:type 为 file 或 folder
	resourceRoutes := g.Group("/resources/:type/:id")
	{
		// 资源详情
		resourceRoutes.GET("", handle.StatResource)
		// 移动/重命名
		resourceRoutes.PATCH("", handle.MoveResource)
		// 软删除，进入回收站
		resourceRoutes.DELETE("", handle.TrashResource)
	}
}
