package cron

import (
	"ViewCounter/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine         *cron.Cron
	schedule       string
	viewMetricsJob *job.ViewMetricsJob
}

// NewCronManager schedule 支持标准 cron 表达式和 @every 描述符
func NewCronManager(schedule string, viewMetricsJob *job.ViewMetricsJob) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule:       schedule,
		viewMetricsJob: viewMetricsJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.schedule, s.viewMetricsJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "schedule", s.schedule)
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
