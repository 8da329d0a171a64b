package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryRunsOnStartAndRepeats(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	s.Every(20 * time.Millisecond).Name("count").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestWithoutOverlappingSkipsBusyEntry(t *testing.T) {
	s := New()
	s.tick = 2 * time.Millisecond

	var runs atomic.Int32
	release := make(chan struct{})
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(ctx context.Context) error {
		runs.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	cancel()
	s.Wait()
}

func TestFailingAndPanickingTasksKeepSchedulerAlive(t *testing.T) {
	s := New()
	s.tick = 2 * time.Millisecond

	var ok atomic.Int32
	s.Every(time.Millisecond).Run(func(context.Context) error { return errors.New("boom") })
	s.Every(time.Millisecond).Run(func(context.Context) error { panic("boom") })
	s.Every(time.Millisecond).Run(func(context.Context) error {
		ok.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return ok.Load() >= 2 }, time.Second, 2*time.Millisecond)
	cancel()
	s.Wait()
}

func TestList(t *testing.T) {
	s := New()
	s.Every(time.Hour).Name("carts:prune").Run(func(context.Context) error { return nil })
	s.Every(time.Minute).Run(func(context.Context) error { return nil })

	assert.Equal(t, []string{"carts:prune  [every 1h0m0s]", "task-2  [every 1m0s]"}, s.List())
}
