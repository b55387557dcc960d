// Package router 注册 HTTP 路由.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 调度任务的管理接口.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	sched := g.Group("/scheduler")
	{
		sched.GET("/jobs", handle.SchedulerJobs)
		sched.POST("/jobs/stop", handle.SchedulerStopJobs)
		sched.DELETE("/jobs/:id", handle.SchedulerRemoveJob)
		sched.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}
}
