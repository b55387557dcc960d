// Package api 汇总 HTTP 服务的路由注册，作为应用层和路由层之间的入口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/router"
)

// RegisterGroup 将全部业务路由注册到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	v1 := e.Group("/api/v1")
	{
		router.RegisterResourceRoutes(v1)
		router.RegisterTrashRoutes(v1)
		router.RegisterShareRoutes(v1)
		router.RegisterHealthCheckRoute(v1)
		router.RegisterSchedulerRoutes(v1)
	}

	router.RegisterSwaggerRoute(e)

	return e
}
