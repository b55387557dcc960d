package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobTrashAutoCleanMorning = "trash.auto_clean.morning"
	JobTrashAutoCleanEvening = "trash.auto_clean.evening"
)

// Cron 表达式常量.
const (
	CronTrashAutoCleanMorning = "0 7 * * *"
	CronTrashAutoCleanEvening = "0 19 * * *"
)
