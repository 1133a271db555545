package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	StoreDriverSQL   = "sql"
	StoreDriverRedis = "redis"

	StrategyAtomic = "atomic"
	StrategyCAS    = "cas"
)

// LoadConfig 从 ./configs 加载配置，环境变量 VIEWCOUNTER_* 可覆盖同名配置项
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VIEWCOUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 60)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("store.driver", StoreDriverSQL)
	v.SetDefault("store.strategy", StrategyAtomic)
	v.SetDefault("store.cas_max_retries", 5)
	v.SetDefault("cache.enable", true)
	v.SetDefault("metrics.schedule", "@every 10m")
	v.SetDefault("kafka.consumer.initial_offset", "oldest")
	v.SetDefault("kafka_entity_consumer.id_column", "id")
}

// Validate 检查组合是否可用
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverSQL:
		if c.Store.Strategy != StrategyAtomic && c.Store.Strategy != StrategyCAS {
			return fmt.Errorf("unknown store strategy %q", c.Store.Strategy)
		}
	case StoreDriverRedis:
		if !c.Redis.Enabled() {
			return errors.New("store driver redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Metrics.Enable && !c.Redis.Enabled() {
		return errors.New("metrics job requires redis.addr")
	}
	if c.Kafka.Enable && (len(c.Kafka.Brokers) == 0 || c.KafkaEntityConsumer.Topic == "") {
		return errors.New("kafka consumer requires brokers and topic")
	}
	return nil
}
