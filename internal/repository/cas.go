package repository

import (
	"context"
	"errors"
)

// ErrCASExhausted 乐观锁重试次数用尽
var ErrCASExhausted = errors.New("compare-and-swap retries exhausted")

type casLoadFunc func() (current, version int64, found bool, err error)

type casSwapFunc func(next, version int64) (swapped bool, err error)

// casIncrement 读取 (count, version) 后带条件写回 count+1，冲突时重读重试
func casIncrement(ctx context.Context, maxRetries int, load casLoadFunc, swap casSwapFunc) (*int64, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, version, found, err := load()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}

		next := current + 1
		swapped, err := swap(next, version)
		if err != nil {
			return nil, err
		}
		if swapped {
			return &next, nil
		}
	}
	return nil, ErrCASExhausted
}
