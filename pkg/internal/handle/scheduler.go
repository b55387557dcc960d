package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/drivevault/pkg/middleware"
)

// SchedulerJobs 列出调度任务（回收站清理、链接过期扫描）的运行状态.
func SchedulerJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": middleware.GetScheduler(c).GetJobInfos()})
}

// SchedulerStopJobs 停止所有调度任务.
func SchedulerStopJobs(c *gin.Context) {
	if err := middleware.GetScheduler(c).StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 按 id 移除调度任务.
func SchedulerRemoveJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := middleware.GetScheduler(c).RemoveJob(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回等待执行的任务数.
func SchedulerQueueWaiting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"waiting": middleware.GetScheduler(c).JobsWaitingInQueue()})
}
