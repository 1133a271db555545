package service

import (
	"ViewCounter/internal/api/dto"
	"ViewCounter/internal/model"
	"ViewCounter/internal/pkg/util"
	"ViewCounter/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type ViewMetricService interface {
	// SyncViewMetric 把实体当前阅读量写入当天快照
	SyncViewMetric(ctx context.Context, entityID string) error
	// GetViewTrend 最近 days 天的阅读量趋势，days 只支持 7 和 30
	GetViewTrend(ctx context.Context, entityID string, days int) (*dto.ViewTrendDTO, error)
}

type viewMetricServiceImpl struct {
	metricRepo  repository.ViewMetricRepo
	counterRepo repository.ViewCounterRepo
	now         func() time.Time
}

func NewViewMetricService(metricRepo repository.ViewMetricRepo, counterRepo repository.ViewCounterRepo) ViewMetricService {
	return &viewMetricServiceImpl{
		metricRepo:  metricRepo,
		counterRepo: counterRepo,
		now:         time.Now,
	}
}

func (s *viewMetricServiceImpl) today() time.Time {
	return util.GetMidnight(s.now().UTC())
}

func (s *viewMetricServiceImpl) SyncViewMetric(ctx context.Context, entityID string) error {
	if err := checkEntityID(entityID); err != nil {
		return err
	}

	counter, err := s.counterRepo.GetViewCount(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get view count for metric failed", "entity_id", entityID, "err", err)
		return ErrStoreUnavailable
	}
	if counter == nil {
		return ErrEntityNotFound
	}

	err = s.metricRepo.SaveOrUpdateMetric(ctx, &model.ViewDailyMetric{
		EntityID:   entityID,
		MetricDate: s.today(),
		TotalViews: counter.Count(),
	})
	if err != nil {
		log.ErrorContext(ctx, "save view metric failed", "entity_id", entityID, "err", err)
		return ErrStoreUnavailable
	}
	return nil
}

func (s *viewMetricServiceImpl) GetViewTrend(ctx context.Context, entityID string, days int) (*dto.ViewTrendDTO, error) {
	if err := checkEntityID(entityID); err != nil {
		return nil, err
	}
	if err := util.ValidateDTO(&dto.ViewTrendQueryDTO{Days: days}); err != nil {
		return nil, ErrParamInvalid
	}

	counter, err := s.counterRepo.GetViewCount(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get view count for trend failed", "entity_id", entityID, "err", err)
		return nil, ErrStoreUnavailable
	}
	if counter == nil {
		return nil, ErrEntityNotFound
	}

	today := s.today()
	start := today.AddDate(0, 0, -(days - 1))

	rawData, err := s.metricRepo.GetMetricsSince(ctx, entityID, start)
	if err != nil {
		log.ErrorContext(ctx, "list view metrics failed", "entity_id", entityID, "err", err)
		return nil, ErrStoreUnavailable
	}

	var lastValid *model.ViewDailyMetric
	if len(rawData) == 0 || !rawData[0].MetricDate.Equal(start) {
		lastValid, err = s.metricRepo.GetLatestMetricBefore(ctx, entityID, start)
		if err != nil {
			log.WarnContext(ctx, "get baseline view metric failed", "entity_id", entityID, "err", err)
		}
	}

	dataMap := make(map[string]*model.ViewDailyMetric, len(rawData))
	for _, m := range rawData {
		dataMap[m.MetricDate.UTC().Format(time.DateOnly)] = m
	}

	res := &dto.ViewTrendDTO{
		EntityID: entityID,
		Days:     days,
		Views:    make([]*dto.ViewMetricDTO, 0, days),
	}
	for i := 0; i < days; i++ {
		dateStr := start.AddDate(0, 0, i).Format(time.DateOnly)

		var v int64
		if m, ok := dataMap[dateStr]; ok {
			v = m.TotalViews
			lastValid = m
		} else if lastValid != nil {
			v = lastValid.TotalViews
		}
		res.Views = append(res.Views, &dto.ViewMetricDTO{Date: dateStr, Value: v})
	}

	// 当天的点用实时计数
	res.Views[days-1].Value = counter.Count()
	return res, nil
}
