package consts

const (
	// MaxEntityIDLen 与 view_counters.entity_id 列宽一致
	MaxEntityIDLen = 64

	// ViewCountField 计数在 Redis 哈希中的字段名
	ViewCountField = "view_count"
)
