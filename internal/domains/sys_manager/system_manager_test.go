package sys_manager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

type countingTask struct {
	runs atomic.Int64
	err  error
}

func (c *countingTask) Execute(context.Context) error {
	c.runs.Add(1)
	return c.err
}

func (c *countingTask) GetName() string { return "countingTask" }

func (c *countingTask) GetInterval() time.Duration { return 10 * time.Millisecond }

func TestSystemManagerRunsTasks(t *testing.T) {
	sm := NewSystemManager(Logger.NewNop())
	ok := &countingTask{}
	failing := &countingTask{err: errors.New("boom")}
	sm.RegisterTask(ok)
	sm.RegisterTask(failing)
	assert.Equal(t, 2, sm.GetTaskCount())

	require.NoError(t, sm.Start())
	assert.Error(t, sm.Start())
	assert.True(t, sm.IsRunning())

	require.Eventually(t, func() bool {
		return ok.runs.Load() >= 3 && failing.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sm.Stop())
	assert.False(t, sm.IsRunning())
	runs := ok.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, ok.runs.Load())
}

type fakeSweeper struct {
	now time.Time
	ttl time.Duration
	n   int
}

func (f *fakeSweeper) SweepIdle(now time.Time, ttl time.Duration) int {
	f.now, f.ttl = now, ttl
	return f.n
}

func TestSessionSweepTask(t *testing.T) {
	sw := &fakeSweeper{n: 2}
	task := NewSessionSweepTask(sw, 5*time.Minute, 0, Logger.NewNop())
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task.now = func() time.Time { return at }

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, at, sw.now)
	assert.Equal(t, 5*time.Minute, sw.ttl)
	assert.Equal(t, time.Minute, task.GetInterval())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, task.Execute(ctx), context.Canceled)
}

type fakePruner struct {
	before time.Time
	err    error
}

func (f *fakePruner) Prune(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return 4, f.err
}

func TestHistoryPruneTask(t *testing.T) {
	p := &fakePruner{}
	task := NewHistoryPruneTask(p, 24*time.Hour, time.Minute, Logger.NewNop())
	at := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	task.now = func() time.Time { return at }

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, at.Add(-24*time.Hour), p.before)

	p.err = errors.New("db gone")
	assert.ErrorContains(t, task.Execute(context.Background()), "db gone")
}
