package kafka

import (
	"ViewCounter/internal/pkg/util"
	"ViewCounter/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

// EntityHandler 消费实体表的 Canal binlog，实体创建时初始化阅读计数
type EntityHandler struct {
	viewCounterSvc service.ViewCounterService
	table          string
	idColumn       string
}

func NewEntityHandler(viewCounterSvc service.ViewCounterService, table, idColumn string) *EntityHandler {
	return &EntityHandler{
		viewCounterSvc: viewCounterSvc,
		table:          table,
		idColumn:       idColumn,
	}
}

func (s *EntityHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("entity consumer setup", "table", s.table)
	return nil
}

func (s *EntityHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("entity consumer cleanup", "table", s.table)
	return nil
}

func (s *EntityHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("entity consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("entity process batch error", "err", err)
		return err
	}
	return nil
}

func (s *EntityHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	// 1. 解析 Canal 消息，格式不对的消息重试也没用，直接跳过
	canalMsg, err := ToCanalMessage(msg, s.table)
	if err != nil {
		if !errors.Is(err, ErrTableNotMatch) && !errors.Is(err, ErrEmptyData) {
			log.WarnContext(ctx, "skip malformed canal message", "offset", msg.Offset, "err", err)
		}
		return nil
	}

	// 2. 计数不随实体删除，只处理 INSERT
	switch canalMsg.Type {
	case INSERT:
		return s.handleInsert(ctx, canalMsg)
	default:
		return nil
	}
}

// handleInsert 一条 INSERT 可能带多行
func (s *EntityHandler) handleInsert(ctx context.Context, msg *CanalMessage) error {
	for _, row := range msg.Data {
		entityID := util.StrFromAny(row[s.idColumn])
		err := s.viewCounterSvc.EnsureCounter(ctx, entityID)
		if errors.Is(err, service.ErrParamInvalid) {
			log.WarnContext(ctx, "skip entity with invalid id", "column", s.idColumn, "value", row[s.idColumn])
			continue
		}
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "view counter ensured", "entity_id", entityID)
	}
	return nil
}
