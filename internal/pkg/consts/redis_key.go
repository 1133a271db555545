package consts

// Redis key 统一使用 {} 包住实体 ID，集群模式下同一实体的 key 落在同一 slot
const (
	ViewCounterKey      = "view:counter:{%s}"
	ViewCountCacheKey   = "view:count:{%s}"
	ViewDirtyKey        = "view:dirty"
	ViewDirtyProcessing = "view:dirty:processing"
)
