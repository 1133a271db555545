package service

import (
	"ViewCounter/internal/api/dto"
	"ViewCounter/internal/pkg/consts"
	"ViewCounter/internal/pkg/util"
	"ViewCounter/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type ViewCounterService interface {
	// GetViewCount 读取当前阅读量，存储值为 NULL 时返回 0
	GetViewCount(ctx context.Context, entityID string) (*dto.ViewCountDTO, error)
	// IncrementViewCount 原子 +1 并返回自增后的阅读量
	IncrementViewCount(ctx context.Context, entityID string) (*dto.ViewCountDTO, error)
	// EnsureCounter 实体创建后初始化计数
	EnsureCounter(ctx context.Context, entityID string) error
}

// loadTimeout 合并回源的超时，回源不受发起请求的 ctx 取消影响
const loadTimeout = 3 * time.Second

type viewCounterServiceImpl struct {
	counterRepo repository.ViewCounterRepo
	cache       repository.ViewCountCache
	tracker     repository.DirtyTracker
	sf          singleflight.Group

	// stale 缓存写回和删除没能保证缓存最新的实体 -> 标记时间
	// 标记之后开始的一次回源写回成功前，读请求跳过缓存
	stale sync.Map
}

// NewViewCounterService cache、tracker 可以为 nil
func NewViewCounterService(
	counterRepo repository.ViewCounterRepo,
	cache repository.ViewCountCache,
	tracker repository.DirtyTracker,
) ViewCounterService {
	return &viewCounterServiceImpl{
		counterRepo: counterRepo,
		cache:       cache,
		tracker:     tracker,
	}
}

func (s *viewCounterServiceImpl) GetViewCount(ctx context.Context, entityID string) (*dto.ViewCountDTO, error) {
	if err := checkEntityID(entityID); err != nil {
		return nil, err
	}

	// 同一实体的并发读合并成一次回源，每个请求只等自己的 ctx
	ch := s.sf.DoChan(entityID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.loadViewCount(loadCtx, entityID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	count, ok := res.Val.(int64)
	if !ok {
		log.ErrorContext(ctx, "unexpected view count type", "entity_id", entityID, "type", res.Val)
		return nil, UnExpectedError
	}
	return &dto.ViewCountDTO{ViewCount: count}, nil
}

func (s *viewCounterServiceImpl) loadViewCount(ctx context.Context, entityID string) (int64, error) {
	start := time.Now()

	if s.cache != nil && !s.isStale(entityID) {
		v, ok, err := s.cache.Get(ctx, entityID)
		if err != nil {
			log.WarnContext(ctx, "read view count cache failed, fallback to store", "entity_id", entityID, "err", err)
		} else if ok {
			return v, nil
		}
	}

	counter, err := s.counterRepo.GetViewCount(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get view count failed", "entity_id", entityID, "err", err)
		return 0, ErrStoreUnavailable
	}
	// 不存在的实体不进缓存，行随时可能被外部创建
	if counter == nil {
		return 0, ErrEntityNotFound
	}

	count := counter.Count()
	s.writeBack(ctx, entityID, count, start)
	return count, nil
}

func (s *viewCounterServiceImpl) IncrementViewCount(ctx context.Context, entityID string) (*dto.ViewCountDTO, error) {
	if err := checkEntityID(entityID); err != nil {
		return nil, err
	}

	start := time.Now()
	count, err := s.counterRepo.IncrViewCount(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "increment view count failed", "entity_id", entityID, "err", err)
		return nil, ErrStoreUnavailable
	}
	if count == nil {
		return nil, ErrEntityNotFound
	}

	s.writeBack(ctx, entityID, *count, start)
	if s.tracker != nil {
		if err = s.tracker.MarkDirty(ctx, entityID); err != nil {
			log.WarnContext(ctx, "mark view dirty failed", "entity_id", entityID, "err", err)
		}
	}
	return &dto.ViewCountDTO{ViewCount: *count}, nil
}

func (s *viewCounterServiceImpl) EnsureCounter(ctx context.Context, entityID string) error {
	if err := checkEntityID(entityID); err != nil {
		return err
	}

	if err := s.counterRepo.EnsureCounter(ctx, entityID); err != nil {
		log.ErrorContext(ctx, "ensure view counter failed", "entity_id", entityID, "err", err)
		return ErrStoreUnavailable
	}
	return nil
}

// writeBack 把 start 之后从存储读到的 count 写回缓存，失败不影响主流程
// 写回失败时删掉旧值并标记 stale，避免之后读到更小的计数
func (s *viewCounterServiceImpl) writeBack(ctx context.Context, entityID string, count int64, start time.Time) {
	if s.cache == nil {
		return
	}

	err := s.cache.SetIfGreater(ctx, entityID, count)
	if err == nil {
		s.clearStale(entityID, start)
		return
	}
	log.WarnContext(ctx, "write view count cache failed", "entity_id", entityID, "err", err)

	// 先标记再删除，删除后并发回源写回的旧值也不会被读到
	s.stale.Store(entityID, time.Now())
	if err = s.cache.Invalidate(ctx, entityID); err != nil {
		log.WarnContext(ctx, "invalidate view count cache failed, bypass cache for entity",
			"entity_id", entityID, "err", err)
	}
}

func (s *viewCounterServiceImpl) isStale(entityID string) bool {
	_, ok := s.stale.Load(entityID)
	return ok
}

// clearStale 只有标记之后开始读存储的写回才能解除标记
func (s *viewCounterServiceImpl) clearStale(entityID string, start time.Time) {
	v, ok := s.stale.Load(entityID)
	if !ok {
		return
	}
	if markedAt, _ := v.(time.Time); start.After(markedAt) {
		s.stale.CompareAndDelete(entityID, v)
	}
}

// checkEntityID 空串、纯空白、超长的 ID 都视为参数错误，不访问存储
func checkEntityID(entityID string) error {
	if strings.TrimSpace(entityID) == "" || len(entityID) > consts.MaxEntityIDLen {
		return ErrParamInvalid
	}
	if err := util.ValidateDTO(&dto.EntityIDDTO{EntityID: entityID}); err != nil {
		return ErrParamInvalid
	}
	return nil
}
