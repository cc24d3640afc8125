package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(5*time.Millisecond, time.UTC)
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestIntervalSchedulerReportsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*60*60)
	got := make(chan time.Time, 1)
	s := NewIntervalScheduler(time.Hour, loc)
	require.NoError(t, s.Start(context.Background(), func(tm time.Time) {
		select {
		case got <- tm:
		default:
		}
	}))
	defer s.Stop(context.Background())

	select {
	case tm := <-got:
		assert.Equal(t, loc, tm.Location())
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}

func TestIntervalSchedulerStopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(time.Hour, nil)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))
	cancel()

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}

func TestIntervalSchedulerNilJob(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewIntervalScheduler(0, nil).Start(context.Background(), nil))
}
