// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/storage"
	"github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每天 07:00 和 19:00 执行回收站自动清理（保留期由 trash.retention_days 控制）
//
// trash.auto_clean 关闭时不注册任何任务.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	if !configs.GetConfig().Trash.AutoClean {
		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddCron(JobTrashAutoCleanMorning, CronTrashAutoCleanMorning, runTrashAutoClean, baseCtx)

	_ = sched.AddCron(JobTrashAutoCleanEvening, CronTrashAutoCleanEvening, runTrashAutoClean, baseCtx)

	return nil
}

// runTrashAutoClean 彻底删除超过保留期的回收站记录。
// 对象删除失败的条目会留到下一轮重试，单轮失败不阻塞其余条目.
func runTrashAutoClean(ctx context.Context) {
	l := log.Logger().With().Str("job", "trash.auto_clean").Logger()

	days := configs.GetConfig().Trash.RetentionDays
	if days <= 0 {
		days = configs.DefaultTrashRetentionDays
	}

	before := time.Now().AddDate(0, 0, -days)

	svc := service.NewTrashService(ctx)

	n, err := svc.AutoClean(ctx, before)
	if err != nil {
		l.Error().Err(err).Time("before", before).Msg("auto clean failed")
		return
	}

	if n > 0 {
		l.Info().Int("purged", n).Time("before", before).Msg("auto cleaned trash")
	}
}
