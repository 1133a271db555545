package dto

// ViewMetricDTO 阅读量趋势点
type ViewMetricDTO struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// ViewTrendDTO 阅读量趋势返回包装
type ViewTrendDTO struct {
	EntityID string           `json:"entityId"`
	Days     int              `json:"days"` // 7 或 30
	Views    []*ViewMetricDTO `json:"views"`
}

// ViewTrendQueryDTO 趋势查询参数
type ViewTrendQueryDTO struct {
	Days int `form:"days" validate:"oneof=7 30"`
}
