package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessLocker_SingleFlight(t *testing.T) {
	l := newInProcessLocker()
	ctx := context.Background()

	release, ok, err := l.TryAcquire(ctx, "batch_tick", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryAcquire(ctx, "batch_tick", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a second acquire of the same key should fail while the first holds it")

	release()

	_, ok, err = l.TryAcquire(ctx, "batch_tick", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "the key should be acquirable again after release")
}

func TestInProcessLocker_DistinctKeysDoNotContend(t *testing.T) {
	l := newInProcessLocker()
	ctx := context.Background()

	_, ok, err := l.TryAcquire(ctx, "stream_poll:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryAcquire(ctx, "stream_poll:b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
