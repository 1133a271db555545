package config

// Config 配置主体
type Config struct {
	Server              ServerConfig        `mapstructure:"server"`
	DB                  DBConfig            `mapstructure:"database"`
	Redis               RedisConfig         `mapstructure:"redis"`
	Store               StoreConfig         `mapstructure:"store"`
	Cache               CacheConfig         `mapstructure:"cache"`
	Metrics             MetricsConfig       `mapstructure:"metrics"`
	Kafka               KafkaConfig         `mapstructure:"kafka"`
	KafkaEntityConsumer KafkaEntityConsumer `mapstructure:"kafka_entity_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver      string `mapstructure:"driver"` // mysql | sqlite
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Enabled addr 为空时不连接 Redis
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// StoreConfig 计数存储
type StoreConfig struct {
	Driver        string `mapstructure:"driver"`   // sql | redis
	Strategy      string `mapstructure:"strategy"` // atomic | cas，仅 sql 生效
	CASMaxRetries int    `mapstructure:"cas_max_retries"`
}

type CacheConfig struct {
	Enable bool `mapstructure:"enable"`
}

type MetricsConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Schedule string `mapstructure:"schedule"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int    `mapstructure:"session_timeout"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int    `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int    `mapstructure:"max_processing_time"`
	InitialOffset     string `mapstructure:"initial_offset"` // newest | oldest，只对新消费组生效
}

// KafkaEntityConsumer 实体创建事件（Canal binlog）
type KafkaEntityConsumer struct {
	Topic    string `mapstructure:"topic"`
	GroupID  string `mapstructure:"group_id"`
	Table    string `mapstructure:"table"`
	IDColumn string `mapstructure:"id_column"`
}
