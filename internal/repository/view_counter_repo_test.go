package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repoBuilder func(t *testing.T) (ViewCounterRepo, *gorm.DB)

// cas 的重试上限不小于并发数时一定成功：每次冲突都意味着另一个调用已经成功
var sqlRepos = map[string]repoBuilder{
	"atomic": func(t *testing.T) (ViewCounterRepo, *gorm.DB) {
		db := newTestDB(t)
		return NewViewCounterRepo(db), db
	},
	"cas": func(t *testing.T) (ViewCounterRepo, *gorm.DB) {
		db := newTestDB(t)
		return NewCASViewCounterRepo(db, 50), db
	},
}

func TestViewCounterRepoGet(t *testing.T) {
	ctx := context.Background()
	repo, db := sqlRepos["atomic"](t)
	seedCounter(t, db, "v1", ptr(7))
	seedCounter(t, db, "v-null", nil)

	t.Run("existing", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			c, err := repo.GetViewCount(ctx, "v1")
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, int64(7), c.Count())
		}
	})

	t.Run("null count reads as zero", func(t *testing.T) {
		c, err := repo.GetViewCount(ctx, "v-null")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Nil(t, c.ViewCount)
		assert.Equal(t, int64(0), c.Count())
	})

	t.Run("unknown", func(t *testing.T) {
		c, err := repo.GetViewCount(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestViewCounterRepoIncrSequential(t *testing.T) {
	for name, build := range sqlRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, db := build(t)
			seedCounter(t, db, "v1", ptr(3))

			const n = 10
			for i := 1; i <= n; i++ {
				got, err := repo.IncrViewCount(ctx, "v1")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, int64(3+i), *got)
			}

			c, err := repo.GetViewCount(ctx, "v1")
			require.NoError(t, err)
			assert.Equal(t, int64(3+n), c.Count())
		})
	}
}

func TestViewCounterRepoIncrConcurrent(t *testing.T) {
	for name, build := range sqlRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, db := build(t)
			seedCounter(t, db, "v1", ptr(0))

			const m = 25
			var wg sync.WaitGroup
			results := make(chan int64, m)
			for i := 0; i < m; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					got, err := repo.IncrViewCount(ctx, "v1")
					if assert.NoError(t, err) && assert.NotNil(t, got) {
						results <- *got
					}
				}()
			}
			wg.Wait()
			close(results)

			seen := make(map[int64]bool)
			for v := range results {
				assert.False(t, seen[v], "duplicate post-increment value %d", v)
				seen[v] = true
			}
			assert.Len(t, seen, m)

			c, err := repo.GetViewCount(ctx, "v1")
			require.NoError(t, err)
			assert.Equal(t, int64(m), c.Count())
		})
	}
}

func TestViewCounterRepoIncrNullAndUnknown(t *testing.T) {
	for name, build := range sqlRepos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, db := build(t)
			seedCounter(t, db, "v-null", nil)

			got, err := repo.IncrViewCount(ctx, "v-null")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(1), *got)

			got, err = repo.IncrViewCount(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, got)

			c, err := repo.GetViewCount(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, c, "increment must not create the counter")
		})
	}
}

func TestViewCounterRepoEnsureCounter(t *testing.T) {
	ctx := context.Background()
	repo, db := sqlRepos["atomic"](t)
	seedCounter(t, db, "v1", ptr(9))

	require.NoError(t, repo.EnsureCounter(ctx, "v2"))
	require.NoError(t, repo.EnsureCounter(ctx, "v2"))
	c, err := repo.GetViewCount(ctx, "v2")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(0), c.Count())

	require.NoError(t, repo.EnsureCounter(ctx, "v1"))
	c, err = repo.GetViewCount(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.Count(), "existing counter must not be reset")
}
