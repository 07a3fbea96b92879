package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newStartedScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(SchedulerConfig{WorkerCount: 2, QueueSize: 8})
	s.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduleRunsJob(t *testing.T) {
	s := newStartedScheduler(t)

	var runs int32
	err := s.Schedule(Job{
		Name: "once",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) == 1 })
}

func TestScheduleValidatesJob(t *testing.T) {
	s := newStartedScheduler(t)

	if err := s.Schedule(Job{Run: func(ctx context.Context) error { return nil }}); err == nil {
		t.Fatal("job without name accepted")
	}
	if err := s.Schedule(Job{Name: "no-runner"}); err == nil {
		t.Fatal("job without runner accepted")
	}
}

func TestScheduleBeforeStart(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})

	err := s.Schedule(Job{Name: "early", Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrSchedulerNotStarted) {
		t.Fatalf("err = %v, want ErrSchedulerNotStarted", err)
	}
}

func TestRetryPolicy(t *testing.T) {
	s := newStartedScheduler(t)

	var attempts int32
	err := s.Schedule(Job{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
		RetryPolicy: RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&attempts) == 3 })
}

func TestPanicIsContained(t *testing.T) {
	s := newStartedScheduler(t)

	var after int32
	_ = s.Schedule(Job{
		Name: "panicky",
		Run: func(ctx context.Context) error {
			panic("boom")
		},
	})
	_ = s.Schedule(Job{
		Name: "survivor",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&after, 1)
			return nil
		},
	})

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&after) == 1 })
}

func TestScheduleEveryRepeats(t *testing.T) {
	s := newStartedScheduler(t)

	var runs int32
	err := s.ScheduleEvery(10*time.Millisecond, Job{
		Name: "periodic",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) >= 3 })
}

func TestShutdownStopsPeriodicJobs(t *testing.T) {
	s := NewScheduler(SchedulerConfig{WorkerCount: 1})
	s.Start(context.Background())

	var runs int32
	_ = s.ScheduleEvery(5*time.Millisecond, Job{
		Name: "stopped",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&runs) >= 1 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	settled := atomic.LoadInt32(&runs)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != settled {
		t.Fatalf("jobs still running after shutdown: %d -> %d", settled, got)
	}
}
