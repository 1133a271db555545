package job

import (
	"ViewCounter/internal/pkg/logger"
	"ViewCounter/internal/repository"
	"ViewCounter/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/google/uuid"
)

// ViewMetricsJob 把有阅读变化的实体写入当天快照
type ViewMetricsJob struct {
	tracker       repository.DirtyTracker
	viewMetricSvc service.ViewMetricService
}

func NewViewMetricsJob(tracker repository.DirtyTracker, viewMetricSvc service.ViewMetricService) *ViewMetricsJob {
	return &ViewMetricsJob{
		tracker:       tracker,
		viewMetricSvc: viewMetricSvc,
	}
}

func (s *ViewMetricsJob) Run() {
	traceID := "job-view-" + uuid.NewString()
	s.run(logger.WithTraceID(context.Background(), traceID))
}

func (s *ViewMetricsJob) run(ctx context.Context) {
	entityIDs, err := s.tracker.TakeDirty(ctx)
	if err != nil {
		log.ErrorContext(ctx, "take view dirty set error", "err", err)
		return
	}

	var failed []string
	for _, id := range entityIDs {
		err = s.viewMetricSvc.SyncViewMetric(ctx, id)
		if err == nil || errors.Is(err, service.ErrEntityNotFound) || errors.Is(err, service.ErrParamInvalid) {
			continue
		}
		failed = append(failed, id)
		log.ErrorContext(ctx, "sync view daily metric error", "entity_id", id, "err", err)
	}

	if err = s.tracker.Ack(ctx); err != nil {
		log.ErrorContext(ctx, "delete view processing set error", "err", err)
	}

	// 失败的实体放回待处理集合，下一轮重试
	for _, id := range failed {
		if err = s.tracker.MarkDirty(ctx, id); err != nil {
			log.ErrorContext(ctx, "requeue view dirty entity error", "entity_id", id, "err", err)
		}
	}

	log.InfoContext(ctx, "sync view metrics done",
		"entity_count", len(entityIDs),
		"failed", len(failed))
}
