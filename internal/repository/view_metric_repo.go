package repository

import (
	"ViewCounter/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewMetricRepo interface {
	SaveOrUpdateMetric(ctx context.Context, metric *model.ViewDailyMetric) error
	GetMetricsSince(ctx context.Context, entityID string, since time.Time) ([]*model.ViewDailyMetric, error)
	GetLatestMetricBefore(ctx context.Context, entityID string, date time.Time) (*model.ViewDailyMetric, error)
}

type viewMetricRepoImpl struct {
	db *gorm.DB
}

func NewViewMetricRepo(db *gorm.DB) ViewMetricRepo {
	return &viewMetricRepoImpl{db: db}
}

// SaveOrUpdateMetric entity_id + metric_date 已存在时覆盖 total_views
func (r *viewMetricRepoImpl) SaveOrUpdateMetric(ctx context.Context, metric *model.ViewDailyMetric) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "metric_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_views"}),
	}).Create(metric).Error
	if err != nil {
		return errors.Wrapf(err, "save view metric, entity_id=%s", metric.EntityID)
	}
	return nil
}

// GetMetricsSince 按日期升序返回 since 之后（含）的快照
func (r *viewMetricRepoImpl) GetMetricsSince(ctx context.Context, entityID string, since time.Time) ([]*model.ViewDailyMetric, error) {
	metrics := make([]*model.ViewDailyMetric, 0)
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND metric_date >= ?", entityID, since).
		Order("metric_date ASC").
		Find(&metrics).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list view metrics, entity_id=%s", entityID)
	}
	return metrics, nil
}

// GetLatestMetricBefore 指定日期前最近的一条快照，用作趋势窗口的起点
func (r *viewMetricRepoImpl) GetLatestMetricBefore(ctx context.Context, entityID string, date time.Time) (*model.ViewDailyMetric, error) {
	var metric model.ViewDailyMetric
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND metric_date < ?", entityID, date).
		Order("metric_date DESC").
		First(&metric).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "latest view metric, entity_id=%s", entityID)
	}
	return &metric, nil
}
