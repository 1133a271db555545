package kafka

import (
	"ViewCounter/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

const clientID = "view-counter"

// newSaramaConfig 消费组配置，offset 在 processBatch 里按批手动标记
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	consumer := kafkaCfg.Consumer
	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.AutoCommit.Enable = false
	// 新消费组默认从头消费，上线前已创建的实体也会补齐计数行
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	if consumer.InitialOffset == "newest" {
		c.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	setSeconds(&c.Consumer.Group.Session.Timeout, consumer.SessionTimeout)
	setSeconds(&c.Consumer.Group.Heartbeat.Interval, consumer.HeartbeatInterval)
	setSeconds(&c.Consumer.Group.Rebalance.Timeout, consumer.RebalanceTimeout)
	setSeconds(&c.Consumer.MaxProcessingTime, consumer.MaxProcessingTime)

	return c
}

// setSeconds 配置为 0 时保留 sarama 默认值
func setSeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
