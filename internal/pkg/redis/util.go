package redis

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BaseTTL = 24 * time.Hour
	Jitter  = 60 * time.Minute
)

// RandomTTL 基础过期时间加随机抖动，防止缓存雪崩
func RandomTTL() time.Duration {
	return BaseTTL + time.Duration(rand.Int63n(int64(Jitter)))
}

// ToInt64 将脚本返回值转换为 int64，无法转换返回错误
func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case uint64:
		if x > uint64(^uint64(0)>>1) {
			return 0, errors.New("integer overflow")
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type: %T", v)
	}
}

// IsNil 判断是否为 key 不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
