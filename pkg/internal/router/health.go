package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 健康检查，整体探活与分存储后端探活.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("", handle.HealthAll)
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/mq", handle.HealthMQ)
	}
}
