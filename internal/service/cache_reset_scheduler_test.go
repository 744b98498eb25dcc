package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clearerStub struct {
	calls int32
}

func (c *clearerStub) ClearCache(ctx context.Context) int {
	atomic.AddInt32(&c.calls, 1)
	return 3
}

func TestCacheResetSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewCacheResetScheduler("every tuesday", &clearerStub{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache reset schedule")
}

func TestCacheResetSchedulerRunClearsTarget(t *testing.T) {
	target := &clearerStub{}
	scheduler, err := NewCacheResetScheduler("@daily", target, nil)
	require.NoError(t, err)

	scheduler.run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&target.calls))
}

func TestCacheResetSchedulerStartStop(t *testing.T) {
	scheduler, err := NewCacheResetScheduler("0 3 * * *", &clearerStub{}, nil)
	require.NoError(t, err)

	require.NoError(t, scheduler.Start())
	require.NoError(t, scheduler.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	scheduler.Stop(ctx)
}
