package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		every(ctx, 10*time.Millisecond, func(context.Context) { runs.Add(1) })
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Fatalf("runs = %d, want at least 3", runs.Load())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("every did not stop on cancel")
	}
}

func TestJobGroupStopsTogether(t *testing.T) {
	var stopped atomic.Int32

	g := startJobs(
		func(ctx context.Context) { <-ctx.Done(); stopped.Add(1) },
		func(ctx context.Context) { <-ctx.Done(); stopped.Add(1) },
		func(ctx context.Context) { <-ctx.Done(); stopped.Add(1) },
	)

	g.stop()
	if stopped.Load() != 3 {
		t.Errorf("stopped = %d, want 3", stopped.Load())
	}

	// Safe to call again.
	g.stop()

	var nilGroup *jobGroup
	nilGroup.stop()
}
