package repository

import (
	"ViewCounter/internal/model"
	"ViewCounter/internal/pkg/util"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewCounterRepo 计数存储契约
// 实体不存在时 GetViewCount / IncrViewCount 返回 nil, nil
type ViewCounterRepo interface {
	// GetViewCount 按 ID 点查
	GetViewCount(ctx context.Context, entityID string) (*model.ViewCounter, error)
	// IncrViewCount 存储端原子 +1，返回自增后的值
	IncrViewCount(ctx context.Context, entityID string) (*int64, error)
	// EnsureCounter 幂等创建计数为 0 的行
	EnsureCounter(ctx context.Context, entityID string) error
}

type viewCounterRepoImpl struct {
	db         *gorm.DB
	useCAS     bool
	maxRetries int
}

// NewViewCounterRepo 使用数据库原生的 UPDATE ... SET view_count = view_count + 1
func NewViewCounterRepo(db *gorm.DB) ViewCounterRepo {
	return &viewCounterRepoImpl{db: db}
}

// NewCASViewCounterRepo 基于 version 列的乐观锁自增，最多重试 maxRetries 次
func NewCASViewCounterRepo(db *gorm.DB, maxRetries int) ViewCounterRepo {
	return &viewCounterRepoImpl{db: db, useCAS: true, maxRetries: maxRetries}
}

func (r *viewCounterRepoImpl) GetViewCount(ctx context.Context, entityID string) (*model.ViewCounter, error) {
	var counter model.ViewCounter
	err := r.db.WithContext(ctx).Where("entity_id = ?", entityID).Take(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get view count, entity_id=%s", entityID)
	}
	return &counter, nil
}

func (r *viewCounterRepoImpl) IncrViewCount(ctx context.Context, entityID string) (*int64, error) {
	if r.useCAS {
		return r.incrByCAS(ctx, entityID)
	}

	var count *int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ViewCounter{}).
			Where("entity_id = ?", entityID).
			Update("view_count", gorm.Expr("COALESCE(view_count, 0) + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		// UPDATE 持有行锁，事务内读到的就是本次自增后的值
		var counter model.ViewCounter
		if err := tx.Select("view_count").Where("entity_id = ?", entityID).Take(&counter).Error; err != nil {
			return err
		}
		v := counter.Count()
		count = &v
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "incr view count, entity_id=%s", entityID)
	}
	return count, nil
}

func (r *viewCounterRepoImpl) incrByCAS(ctx context.Context, entityID string) (*int64, error) {
	db := r.db.WithContext(ctx)

	load := func() (int64, int64, bool, error) {
		var counter model.ViewCounter
		err := db.Where("entity_id = ?", entityID).Take(&counter).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, 0, false, nil
			}
			return 0, 0, false, err
		}
		return counter.Count(), counter.Version, true, nil
	}

	swap := func(next, version int64) (bool, error) {
		res := db.Model(&model.ViewCounter{}).
			Where("entity_id = ? AND version = ?", entityID, version).
			Updates(map[string]any{
				"view_count": next,
				"version":    version + 1,
			})
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected == 1, nil
	}

	count, err := casIncrement(ctx, r.maxRetries, load, swap)
	if err != nil {
		return nil, errors.Wrapf(err, "cas incr view count, entity_id=%s", entityID)
	}
	return count, nil
}

func (r *viewCounterRepoImpl) EnsureCounter(ctx context.Context, entityID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ViewCounter{EntityID: entityID, ViewCount: util.PtrInt64(0)}).Error
	if err != nil {
		return errors.Wrapf(err, "ensure view counter, entity_id=%s", entityID)
	}
	return nil
}
