package repository

import (
	"ViewCounter/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDirtyTracker(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	tracker := NewRedisDirtyTracker(rdb)

	ids, err := tracker.TakeDirty(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, tracker.MarkDirty(ctx, "v1"))
	require.NoError(t, tracker.MarkDirty(ctx, "v2"))
	require.NoError(t, tracker.MarkDirty(ctx, "v1"))

	ids, err = tracker.TakeDirty(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, ids)
	assert.False(t, mr.Exists(consts.ViewDirtyKey))

	// 未 Ack 的成员在下一轮仍会返回
	require.NoError(t, tracker.MarkDirty(ctx, "v3"))
	ids, err = tracker.TakeDirty(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2", "v3"}, ids)

	require.NoError(t, tracker.Ack(ctx))
	ids, err = tracker.TakeDirty(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
