package cron

import (
	log "log/slog"

	"github.com/pkg/errors"
)

// InitCron 注册阅读指标任务后启动调度，表达式非法时不启动
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return errors.Wrapf(err, "register view metrics job, schedule=%q", mgr.schedule)
	}
	mgr.Start()
	log.Info("Cron Jobs started", "entries", len(mgr.engine.Entries()))
	return nil
}
