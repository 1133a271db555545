package model

import (
	"time"
)

type ViewDailyMetric struct {
	ID         uint64    `gorm:"primaryKey"`
	EntityID   string    `gorm:"type:varchar(64);not null;index:idx_entity_date,unique" json:"entityId"`
	MetricDate time.Time `gorm:"not null;index:idx_entity_date,unique;column:metric_date" json:"metricDate"`
	TotalViews int64     `gorm:"not null;default:0" json:"totalViews"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ViewDailyMetric) TableName() string {
	return "view_daily_metrics"
}
