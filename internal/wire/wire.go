package wire

import (
	"ViewCounter/internal/api"
	"ViewCounter/internal/api/config"
	"ViewCounter/internal/api/handler"
	"ViewCounter/internal/job"
	"ViewCounter/internal/pkg/cron"
	"ViewCounter/internal/pkg/kafka"
	"ViewCounter/internal/repository"
	"ViewCounter/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
// CronMgr、KafkaManager 未启用时为 nil
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

// BuildApplication rdb 可以为 nil，此时只使用 SQL 存储且不启用缓存和指标任务
func BuildApplication(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*ApplicationContainer, error) {
	counterRepo := newCounterRepo(db, rdb, cfg.Store)
	metricRepo := repository.NewViewMetricRepo(db)

	var (
		cache   repository.ViewCountCache
		tracker repository.DirtyTracker
	)
	if rdb != nil {
		// Redis 本身就是存储时不再叠一层缓存
		if cfg.Cache.Enable && cfg.Store.Driver == config.StoreDriverSQL {
			cache = repository.NewRedisViewCountCache(rdb)
		}
		if cfg.Metrics.Enable {
			tracker = repository.NewRedisDirtyTracker(rdb)
		}
	}

	viewCounterService := service.NewViewCounterService(counterRepo, cache, tracker)
	viewMetricService := service.NewViewMetricService(metricRepo, counterRepo)

	handlers := &api.HandlersGroup{
		ViewCounterHandler: handler.NewViewCounterHandler(viewCounterService, viewMetricService),
	}
	router := api.SetupRouter(handlers)

	app := &ApplicationContainer{
		Router: router,
		DB:     db,
	}

	if tracker != nil {
		app.CronMgr = cron.NewCronManager(cfg.Metrics.Schedule, job.NewViewMetricsJob(tracker, viewMetricService))
	}

	if cfg.Kafka.Enable {
		kafkaMgr, err := kafka.NewConsumerManager(cfg, viewCounterService)
		if err != nil {
			return nil, err
		}
		app.KafkaManager = kafkaMgr
	}

	return app, nil
}

func newCounterRepo(db *gorm.DB, rdb *redis.Client, cfg config.StoreConfig) repository.ViewCounterRepo {
	switch {
	case cfg.Driver == config.StoreDriverRedis && rdb != nil:
		log.Info("view counter store", "driver", cfg.Driver)
		return repository.NewRedisViewCounterRepo(rdb)
	case cfg.Strategy == config.StrategyCAS:
		log.Info("view counter store", "driver", config.StoreDriverSQL, "strategy", cfg.Strategy, "max_retries", cfg.CASMaxRetries)
		return repository.NewCASViewCounterRepo(db, cfg.CASMaxRetries)
	default:
		log.Info("view counter store", "driver", config.StoreDriverSQL, "strategy", config.StrategyAtomic)
		return repository.NewViewCounterRepo(db)
	}
}
