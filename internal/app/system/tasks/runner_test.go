package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsJobOnStart(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	// Jobs fire once immediately, before the first tick.
	if runs.Load() < 1 {
		t.Errorf("job ran %d times, want at least 1", runs.Load())
	}
}

func TestRunner_MultipleJobs(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var sweeps, syncs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			sweeps.Add(1)
			return nil
		},
	})
	runner.Register(tasks.Job{
		Name:     "stats-sync",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			syncs.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if sweeps.Load() < 1 || syncs.Load() < 1 {
		t.Errorf("jobs ran %d/%d times, want both at least once", sweeps.Load(), syncs.Load())
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	cancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "blocked-job",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("Stop() did not cancel the job context")
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck-job",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			// Ignores its context; Stop must give up at the deadline.
			time.Sleep(5 * time.Second)
			return nil
		},
	})

	runner.Start()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := runner.Stop(ctx); err != context.DeadlineExceeded {
		t.Errorf("Stop() error = %v, want DeadlineExceeded", err)
	}
}

func TestRunner_PanicDoesNotKillRunner(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "flaky-job",
		Interval: 30 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if runs.Add(1) == 1 {
				panic("boom")
			}
			return nil
		},
	})

	runner.Start()
	time.Sleep(120 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	// The first run panicked; the ticker must still drive later runs.
	if runs.Load() < 2 {
		t.Errorf("job ran %d times, want the schedule to survive the panic", runs.Load())
	}
}

func TestRunner_RunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	wantErr := errors.New("sweep failed")
	runner.Register(tasks.Job{
		Name:     "session-sweep",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return wantErr
		},
	})

	// The runner is never started; RunOnce drives the job directly and
	// surfaces its error.
	if err := runner.RunOnce(context.Background(), "session-sweep"); err != wantErr {
		t.Errorf("RunOnce() error = %v, want %v", err, wantErr)
	}
	if runs.Load() != 1 {
		t.Errorf("job ran %d times, want 1", runs.Load())
	}

	if err := runner.RunOnce(context.Background(), "no-such-job"); err != nil {
		t.Errorf("RunOnce(unknown) error = %v, want nil", err)
	}
}
