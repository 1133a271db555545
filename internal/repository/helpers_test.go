package repository

import (
	"ViewCounter/internal/api/config"
	"ViewCounter/internal/model"
	"ViewCounter/internal/pkg/database"
	"ViewCounter/internal/pkg/redis"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(&config.DBConfig{
		Driver:      "sqlite",
		DSN:         ":memory:",
		MaxIdle:     1,
		MaxOpen:     1,
		AutoMigrate: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedCounter(t *testing.T, db *gorm.DB, entityID string, count *int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.ViewCounter{EntityID: entityID, ViewCount: count}).Error)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisv9.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redis.InitRedis(config.RedisConfig{Addr: mr.Addr(), PoolSize: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func ptr(v int64) *int64 {
	return &v
}
