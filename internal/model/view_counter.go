package model

import (
	"time"
)

// ViewCounter 实体的阅读计数，行由实体创建方负责插入
type ViewCounter struct {
	EntityID  string    `gorm:"primaryKey;type:varchar(64)" json:"entityId"`
	ViewCount *int64    `json:"viewCount"`
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ViewCounter) TableName() string {
	return "view_counters"
}

// Count 存储值为 NULL 时按 0 处理
func (c *ViewCounter) Count() int64 {
	if c == nil || c.ViewCount == nil {
		return 0
	}
	return *c.ViewCount
}
