package dto

// ViewCountDTO GET/POST /entities/:id/views 的返回体
type ViewCountDTO struct {
	ViewCount int64 `json:"viewCount"`
}

// EntityIDDTO 实体 ID 校验
type EntityIDDTO struct {
	EntityID string `json:"entityId" validate:"required,max=64"`
}
