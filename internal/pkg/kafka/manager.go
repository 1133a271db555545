package kafka

import (
	"ViewCounter/internal/api/config"
	"ViewCounter/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	entityConsumer sarama.ConsumerGroup
	entityHandler  sarama.ConsumerGroupHandler
	entityTopic    string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, viewCounterSvc service.ViewCounterService) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	entityCfg := cfg.KafkaEntityConsumer
	entityConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, entityCfg.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		entityConsumer: entityConsumer,
		entityHandler:  NewEntityHandler(viewCounterSvc, entityCfg.Table, entityCfg.IDColumn),
		entityTopic:    entityCfg.Topic,
	}, nil
}

// Start 启动消费者，ctx 结束后关闭
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.entityConsumer.Errors() {
			log.Error("Error from entity consumer group", "err", err)
		}
	}()

	go func() {
		log.Info("Entity consumer started", "topic", m.entityTopic)
		for {
			err := m.entityConsumer.Consume(ctx, []string{m.entityTopic}, m.entityHandler)
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			if err != nil {
				log.Error("Error from consumer", "err", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.entityConsumer.Close(); err != nil {
		log.Error("Failed to close entity consumer", "err", err)
	}
	return nil
}
