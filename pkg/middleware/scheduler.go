// Package middleware 提供 gin 中间件：认证、限流、熔断、追踪、
// 访问日志，以及把调度器和存储 Manager 注入请求上下文.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware 把调度器放进请求 context，管理接口从中取用.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), schedulerKey{}, sched))
		c.Next()
	}
}

// GetScheduler 取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	sched, _ := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler)

	return sched
}
