package intervention

import (
	"context"
	"sync"
	"time"
)

// BreakTimer runs a single countdown for a user-requested break. Progress
// is reported once per tick as a percentage, and the completion callback
// fires when the configured number of ticks has elapsed. Elapsed time is
// counted in ticks rather than wall-clock arithmetic, so a suspended
// process resumes counting instead of jumping; an outright restart simply
// begins a fresh countdown, since in-flight timer state is never persisted.
type BreakTimer struct {
	duration time.Duration
	tick     time.Duration

	onProgress func(percent float64)
	onComplete func()

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewBreakTimer creates a countdown of the given duration. tick controls
// how often progress is reported; the production default is one minute.
func NewBreakTimer(duration, tick time.Duration, onProgress func(percent float64), onComplete func()) *BreakTimer {
	return &BreakTimer{
		duration:   duration,
		tick:       tick,
		onProgress: onProgress,
		onComplete: onComplete,
	}
}

// Start begins the countdown. Starting an already-running timer restarts
// it from zero. The countdown stops on its own at completion or when ctx
// is cancelled.
func (b *BreakTimer) Start(ctx context.Context) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.running = true
	b.mu.Unlock()

	go b.run(runCtx)
}

// Stop cancels an in-flight countdown. Completed or never-started timers
// are unaffected.
func (b *BreakTimer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.running = false
}

// Running reports whether the countdown is in flight.
func (b *BreakTimer) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *BreakTimer) run(ctx context.Context) {
	totalTicks := int(b.duration / b.tick)
	if totalTicks < 1 {
		totalTicks = 1
	}

	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	elapsed := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed++
			percent := float64(elapsed) / float64(totalTicks) * 100
			if percent > 100 {
				percent = 100
			}
			if b.onProgress != nil {
				b.onProgress(percent)
			}
			if elapsed >= totalTicks {
				b.mu.Lock()
				b.running = false
				b.cancel = nil
				b.mu.Unlock()
				if b.onComplete != nil {
					b.onComplete()
				}
				return
			}
		}
	}
}
