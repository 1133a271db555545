package util

import (
	"fmt"
	"strconv"
	"time"
)

// GetMidnight 返回 t 所在时区当天零点
func GetMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PtrInt64 用于将 int64 转换为 *int64
func PtrInt64(i int64) *int64 {
	return &i
}

// StrFromAny Canal 消息里的列值统一转成字符串
// JSON 数字会被解成 float64，整数部分原样输出
func StrFromAny(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
