package session

import (
	"context"
	"sync"
	"time"
)

// Maintenance cadence. Resync defends against missed pushes, the
// referential refresh against server-side table rotation.
const (
	resyncInterval      = 60 * time.Second
	referentialInterval = 300 * time.Second
)

// jobGroup owns the session's scheduled maintenance goroutines. All
// jobs share one context and stop together, so none of them can fire
// against a torn-down transport.
type jobGroup struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startJobs(jobs ...func(context.Context)) *jobGroup {
	ctx, cancel := context.WithCancel(context.Background())
	g := &jobGroup{cancel: cancel}
	for _, job := range jobs {
		g.wg.Add(1)
		go func(fn func(context.Context)) {
			defer g.wg.Done()
			fn(ctx)
		}(job)
	}
	return g
}

// stop cancels every job and waits for them to return. Safe to call
// more than once.
func (g *jobGroup) stop() {
	if g == nil {
		return
	}
	g.cancel()
	g.wg.Wait()
}

// every runs fn on a fixed interval until the context ends. The first
// run happens after one full interval, not immediately.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
