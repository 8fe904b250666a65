package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegisterJobRunsOnSchedule(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	ticks := make(chan struct{}, 4)
	err = s.RegisterJob("test_job", "@every 20ms", func(ctx context.Context) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("job never fired within timeout")
	}
}

func TestScheduler_StopWaitsForInFlightJob(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	started := make(chan struct{})
	finished := make(chan struct{})
	err = s.RegisterJob("slow_job", "@every 10ms", func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		time.Sleep(100 * time.Millisecond)
		close(finished)
		return nil
	})
	require.NoError(t, err)

	s.Start()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before the in-flight job finished")
	}
}

func TestDefaultBatchTickSchedule(t *testing.T) {
	assert.Equal(t, "@every 30m", defaultBatchTickSchedule)
}
