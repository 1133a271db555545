package repository

import (
	"ViewCounter/internal/pkg/consts"
	"ViewCounter/internal/pkg/redis"
	"context"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// ViewCountCache 读路径缓存，只缓存已存在实体的计数
// 计数行由外部创建，不缓存"不存在"，否则创建后一段时间内仍会读到 404
type ViewCountCache interface {
	// Get 未命中时 ok 为 false
	Get(ctx context.Context, entityID string) (count int64, ok bool, err error)
	// SetIfGreater 只允许缓存值变大，自增写回与回源写入并发时不会回退
	SetIfGreater(ctx context.Context, entityID string, count int64) error
	Invalidate(ctx context.Context, entityID string) error
}

var setIfGreaterScript = redisv9.NewScript(`
local v = redis.call("GET", KEYS[1])
if v then
	local cur = tonumber(v)
	if cur and cur >= tonumber(ARGV[1]) then
		return 0
	end
end
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
return 1
`)

type redisViewCountCache struct {
	rdb *redisv9.Client
}

func NewRedisViewCountCache(rdb *redisv9.Client) ViewCountCache {
	return &redisViewCountCache{rdb: rdb}
}

func cacheKey(entityID string) string {
	return fmt.Sprintf(consts.ViewCountCacheKey, entityID)
}

func (c *redisViewCountCache) Get(ctx context.Context, entityID string) (int64, bool, error) {
	res, err := c.rdb.Get(ctx, cacheKey(entityID)).Result()
	if err != nil {
		if redis.IsNil(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	v, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		return 0, false, err
	}
	// 旧版本写入的 -1 空值标记按未命中处理
	if v < 0 {
		return 0, false, nil
	}
	return v, true, nil
}

func (c *redisViewCountCache) SetIfGreater(ctx context.Context, entityID string, count int64) error {
	ttl := int64(redis.RandomTTL() / time.Second)
	return setIfGreaterScript.Run(ctx, c.rdb, []string{cacheKey(entityID)}, count, ttl).Err()
}

func (c *redisViewCountCache) Invalidate(ctx context.Context, entityID string) error {
	return c.rdb.Del(ctx, cacheKey(entityID)).Err()
}
