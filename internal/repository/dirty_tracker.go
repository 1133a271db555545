package repository

import (
	"ViewCounter/internal/pkg/consts"
	"context"

	redisv9 "github.com/redis/go-redis/v9"
)

// DirtyTracker 记录有新阅读的实体，供指标任务批量同步
type DirtyTracker interface {
	MarkDirty(ctx context.Context, entityID string) error
	// TakeDirty 把待处理集合并入 processing 集合并返回全部成员
	// 上一轮未 Ack 的成员会一起返回
	TakeDirty(ctx context.Context) ([]string, error)
	// Ack 本轮处理完成，清空 processing 集合
	Ack(ctx context.Context) error
}

var takeDirtyScript = redisv9.NewScript(`
redis.call("SUNIONSTORE", KEYS[2], KEYS[2], KEYS[1])
redis.call("DEL", KEYS[1])
return redis.call("SMEMBERS", KEYS[2])
`)

type redisDirtyTracker struct {
	rdb *redisv9.Client
}

func NewRedisDirtyTracker(rdb *redisv9.Client) DirtyTracker {
	return &redisDirtyTracker{rdb: rdb}
}

func (t *redisDirtyTracker) MarkDirty(ctx context.Context, entityID string) error {
	return t.rdb.SAdd(ctx, consts.ViewDirtyKey, entityID).Err()
}

func (t *redisDirtyTracker) TakeDirty(ctx context.Context) ([]string, error) {
	return takeDirtyScript.Run(ctx, t.rdb, []string{consts.ViewDirtyKey, consts.ViewDirtyProcessing}).StringSlice()
}

func (t *redisDirtyTracker) Ack(ctx context.Context) error {
	return t.rdb.Del(ctx, consts.ViewDirtyProcessing).Err()
}
