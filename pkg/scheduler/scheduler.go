// Package scheduler 封装 gocron/v2，为回收站自动清理这类周期任务
// 提供带状态跟踪的 cron 调度.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/drivevault/pkg/log"
)

// statusRefreshInterval 后台刷新 NextRun/LastRun 的周期.
const statusRefreshInterval = 10 * time.Second

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobInfo 单个任务的可观测信息，由 /scheduler 管理接口返回.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scheduler 按名称管理 cron 任务.
type Scheduler struct {
	inner  gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]gocron.Job
	infos  map[string]*JobInfo
	names  map[uuid.UUID]string
	logger *zerolog.Logger
	cancel context.CancelFunc
}

// NewScheduler 创建调度器并启动后台状态刷新.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		inner:  inner,
		jobs:   make(map[string]gocron.Job),
		infos:  make(map[string]*JobInfo),
		names:  make(map[uuid.UUID]string),
		logger: log.Logger(),
		cancel: cancel,
	}

	go s.refreshLoop(ctx)

	return s, nil
}

// AddCron 注册一个 cron 任务.名称重复时报错，panic 会被捕获并记录为任务出错.
func (s *Scheduler) AddCron(name string, cronExpr string, job func(ctx context.Context), ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	run := func(ctx context.Context) {
		s.setStatus(name, StatusRunning, "")

		defer func() {
			if r := recover(); r != nil {
				s.setStatus(name, StatusError, fmt.Sprintf("panic: %v", r))
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
			}
		}()

		job(ctx)

		s.setStatus(name, StatusScheduled, "")
		s.markSuccess(name)
	}

	j, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run, ctx),
		gocron.WithName(name),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(jobID uuid.UUID, jobName string) {
				s.mu.Lock()
				defer s.mu.Unlock()

				if info, ok := s.infos[jobName]; ok {
					info.LastRun = time.Now()
					info.UpdatedAt = time.Now()
				}
			}),
		),
	)
	if err != nil {
		return err
	}

	now := time.Now()
	nextRun, _ := j.NextRun()

	s.jobs[name] = j
	s.names[j.ID()] = name
	s.infos[name] = &JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		NextRun:   nextRun,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("cron job registered")

	return nil
}

// Start 启动调度.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("scheduler starting")
	s.inner.Start()
}

// Stop 停止调度并关闭后台刷新.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("scheduler stopping")
	s.cancel()

	return s.inner.Shutdown()
}

// StopJobs 停止全部任务的执行但保留注册.
func (s *Scheduler) StopJobs() error {
	return s.inner.StopJobs()
}

// RemoveJob 按 id 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.names[id]; ok {
		delete(s.jobs, name)
		delete(s.infos, name)
		delete(s.names, id)
	}

	return s.inner.RemoveJob(id)
}

// JobsWaitingInQueue 排队等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// GetJobInfos 返回全部任务的当前状态快照.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.infos))
	for _, info := range s.infos {
		out = append(out, *info)
	}

	return out
}

func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.infos[name]; ok {
		info.Status = status
		info.Error = errMsg
		info.UpdatedAt = time.Now()
	}
}

func (s *Scheduler) markSuccess(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.infos[name]; ok {
		info.LastSuccess = time.Now()
	}
}

// refreshLoop 周期性回填 gocron 侧的运行时间.
func (s *Scheduler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(statusRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

func (s *Scheduler) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, job := range s.jobs {
		info := s.infos[name]
		if info == nil {
			continue
		}

		if next, err := job.NextRun(); err == nil {
			info.NextRun = next
		}

		if last, err := job.LastRun(); err == nil {
			info.LastRun = last
		}

		info.UpdatedAt = time.Now()
	}
}
