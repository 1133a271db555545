package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Redis: RedisConfig{Addr: "127.0.0.1:6379"},
		Store: StoreConfig{Driver: StoreDriverSQL, Strategy: StrategyAtomic, CASMaxRetries: 5},
	}
}

func TestValidate(t *testing.T) {
	t.Run("sql atomic", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Strategy = "pessimistic"
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis store without redis", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Driver = StoreDriverRedis
		cfg.Redis.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("metrics without redis", func(t *testing.T) {
		cfg := validConfig()
		cfg.Metrics.Enable = true
		cfg.Redis.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("kafka without topic", func(t *testing.T) {
		cfg := validConfig()
		cfg.Kafka.Enable = true
		cfg.Kafka.Brokers = []string{"127.0.0.1:9092"}
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	yaml := []byte(`
server:
  port: 9090
database:
  driver: sqlite
  dsn: ":memory:"
store:
  driver: sql
  strategy: cas
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), yaml, 0o644))
	t.Chdir(dir)
	t.Setenv("VIEWCOUNTER_STORE_CAS_MAX_RETRIES", "9")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, StrategyCAS, cfg.Store.Strategy)
	assert.Equal(t, 9, cfg.Store.CASMaxRetries)
	assert.Equal(t, "@every 10m", cfg.Metrics.Schedule)
	assert.Equal(t, "id", cfg.KafkaEntityConsumer.IDColumn)
}
