package repository

import (
	"ViewCounter/internal/model"
	"ViewCounter/internal/pkg/consts"
	"ViewCounter/internal/pkg/redis"
	"context"
	"fmt"

	"github.com/pkg/errors"
	redisv9 "github.com/redis/go-redis/v9"
)

// 实体不存在时返回 nil，存在时 HINCRBY 字段不存在会从 0 开始
var incrViewScript = redisv9.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

type redisViewCounterRepo struct {
	rdb *redisv9.Client
}

// NewRedisViewCounterRepo 以 Redis 哈希 view:counter:{id} 作为主存储
func NewRedisViewCounterRepo(rdb *redisv9.Client) ViewCounterRepo {
	return &redisViewCounterRepo{rdb: rdb}
}

func counterKey(entityID string) string {
	return fmt.Sprintf(consts.ViewCounterKey, entityID)
}

func (r *redisViewCounterRepo) GetViewCount(ctx context.Context, entityID string) (*model.ViewCounter, error) {
	key := counterKey(entityID)

	pipe := r.rdb.TxPipeline()
	existsCmd := pipe.Exists(ctx, key)
	countCmd := pipe.HGet(ctx, key, consts.ViewCountField)
	if _, err := pipe.Exec(ctx); err != nil && !redis.IsNil(err) {
		return nil, errors.Wrapf(err, "get view count, entity_id=%s", entityID)
	}

	if existsCmd.Val() == 0 {
		return nil, nil
	}

	counter := &model.ViewCounter{EntityID: entityID}
	v, err := countCmd.Int64()
	switch {
	case err == nil:
		counter.ViewCount = &v
	case redis.IsNil(err):
	default:
		return nil, errors.Wrapf(err, "parse view count, entity_id=%s", entityID)
	}
	return counter, nil
}

func (r *redisViewCounterRepo) IncrViewCount(ctx context.Context, entityID string) (*int64, error) {
	res, err := incrViewScript.Run(ctx, r.rdb, []string{counterKey(entityID)}, consts.ViewCountField).Result()
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "incr view count, entity_id=%s", entityID)
	}

	v, err := redis.ToInt64(res)
	if err != nil {
		return nil, errors.Wrapf(err, "incr view count, entity_id=%s", entityID)
	}
	return &v, nil
}

func (r *redisViewCounterRepo) EnsureCounter(ctx context.Context, entityID string) error {
	err := r.rdb.HSetNX(ctx, counterKey(entityID), consts.ViewCountField, 0).Err()
	if err != nil {
		return errors.Wrapf(err, "ensure view counter, entity_id=%s", entityID)
	}
	return nil
}
