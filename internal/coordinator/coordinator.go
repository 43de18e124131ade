// Package coordinator wires the metrics store, score calculator,
// persistent state, and intervention manager together: it ingests events,
// debounces evaluation, runs the hourly sweep and session autosave, and
// fans updates out to connected UI listeners.
package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/intervention"
	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/scoring"
	"github.com/runnerr0/burnwatch/internal/state"
)

// trendPoints is how many hour buckets the UI trend covers.
const trendPoints = 12

// Update is a push message for connected listeners.
type Update struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Trend is the chart-ready view of the hourly trend index.
type Trend struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// BurnoutData is the query/response payload served to UI collaborators.
type BurnoutData struct {
	CurrentScore float64      `json:"currentScore"`
	Metrics      metrics.View `json:"metrics"`
	WeeklyTrend  Trend        `json:"weeklyTrend"`
	LastUpdated  time.Time    `json:"lastUpdated"`
	Status       string       `json:"status"`
	Error        string       `json:"error,omitempty"`
}

// Options tunes the coordinator's timing and filtering. Zero values fall
// back to production defaults.
type Options struct {
	Debounce         time.Duration
	SweepInterval    time.Duration
	AutoSaveInterval time.Duration
	BreakTick        time.Duration
	IgnoredDomains   []string
	Now              func() time.Time
}

func (o *Options) applyDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = time.Second
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Hour
	}
	if o.AutoSaveInterval <= 0 {
		o.AutoSaveInterval = time.Hour
	}
	if o.BreakTick <= 0 {
		o.BreakTick = time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Coordinator orchestrates the scoring and persistence pipeline. One
// instance is created at startup with its collaborators injected; events
// flow through a single dispatch goroutine.
type Coordinator struct {
	metrics       *metrics.Store
	calc          *scoring.Calculator
	state         state.Store
	interventions *intervention.Manager
	logger        *zap.Logger
	opts          Options
	ignored       map[string]struct{}

	events chan Event
	evalCh chan struct{}

	mu           sync.Mutex
	listeners    map[chan Update]struct{}
	debounce     *time.Timer
	breakTimer   *intervention.BreakTimer
	interactions map[string]int

	wg sync.WaitGroup
}

// New constructs a Coordinator over an already-built component graph.
func New(
	metricsStore *metrics.Store,
	calc *scoring.Calculator,
	stateStore state.Store,
	interventions *intervention.Manager,
	logger *zap.Logger,
	opts Options,
) *Coordinator {
	opts.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	ignored := make(map[string]struct{}, len(opts.IgnoredDomains))
	for _, d := range opts.IgnoredDomains {
		ignored[d] = struct{}{}
	}

	return &Coordinator{
		metrics:       metricsStore,
		calc:          calc,
		state:         stateStore,
		interventions: interventions,
		logger:        logger,
		opts:          opts,
		ignored:       ignored,
		events:        make(chan Event, 64),
		evalCh:        make(chan struct{}, 1),
		listeners:     map[chan Update]struct{}{},
		interactions:  map[string]int{},
	}
}

// Start initializes storage, restores the persisted metrics snapshot, and
// launches the dispatch loop. The loop runs until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.state.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize state: %w", err)
	}

	snap, err := c.state.LoadMetricsSnapshot(ctx)
	if err != nil {
		c.logger.Warn("metrics snapshot load failed, starting empty", zap.Error(err))
	} else if snap != nil {
		c.metrics.Restore(*snap)
		c.logger.Info("metrics restored from storage",
			zap.Int("tab_events", len(snap.TabVelocity)),
			zap.Int("switches", len(snap.Switches)),
		)
	}

	c.wg.Add(1)
	go c.loop(ctx)
	return nil
}

// Wait blocks until the dispatch loop has exited.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Ingest hands an event to the dispatch loop. When the queue is full the
// event is dropped with a log line; behavioral signals are lossy by nature
// and the next evaluation resyncs from the store.
func (c *Coordinator) Ingest(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event queue full, dropping event", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

func (c *Coordinator) loop(ctx context.Context) {
	defer c.wg.Done()

	sweep := time.NewTicker(c.opts.SweepInterval)
	defer sweep.Stop()
	autosave := time.NewTicker(c.opts.AutoSaveInterval)
	defer autosave.Stop()

	for {
		select {
		case <-ctx.Done():
			c.stopDebounce()
			return

		case ev := <-c.events:
			c.handleEvent(ctx, ev)

		case <-c.evalCh:
			if _, err := c.Evaluate(ctx); err != nil {
				c.logger.Warn("debounced evaluation failed", zap.Error(err))
			}

		case now := <-sweep.C:
			removed := c.metrics.Sweep(now)
			if err := c.state.SaveMetricsSnapshot(ctx, c.metrics.Snapshot()); err != nil {
				c.logger.Warn("metrics persistence failed after sweep", zap.Error(err))
			}
			c.logger.Debug("sweep complete", zap.Int("removed", removed))

		case <-autosave.C:
			if _, err := c.Evaluate(ctx); err != nil {
				c.logger.Warn("periodic evaluation failed", zap.Error(err))
			}
		}
	}
}

// handleEvent applies one inbound event. Metric-bearing events are gated
// on the tracking flag and followed by a debounced evaluation.
func (c *Coordinator) handleEvent(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case TabCreated:
		if !c.state.TrackingEnabled(ctx) {
			return
		}
		c.metrics.RecordTabCreation(e.TabID, c.opts.Now())
		c.scheduleEvaluation()

	case TabSwitched:
		if !c.state.TrackingEnabled(ctx) {
			return
		}
		c.metrics.RecordTabSwitch(e.TabID, e.PreviousTabID, c.opts.Now())
		c.scheduleEvaluation()

	case VideoActivity:
		if !c.state.TrackingEnabled(ctx) {
			return
		}
		c.metrics.RecordVideoActivity(e.VideosWatched, e.TimeSpentSeconds, e.IsBinge)
		c.scheduleEvaluation()

	case UserInteraction:
		if _, skip := c.ignored[e.Domain]; skip {
			return
		}
		c.mu.Lock()
		c.interactions[e.Kind]++
		c.mu.Unlock()

	case StartBreak:
		c.startBreak(ctx, e.Minutes)

	default:
		c.logger.Warn("unhandled event", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

// scheduleEvaluation collapses event bursts into a single evaluation after
// a quiet period: each call restarts the countdown, so only the last
// scheduled evaluation in a burst runs.
func (c *Coordinator) scheduleEvaluation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debounce != nil {
		c.debounce.Reset(c.opts.Debounce)
		return
	}
	c.debounce = time.AfterFunc(c.opts.Debounce, func() {
		select {
		case c.evalCh <- struct{}{}:
		default:
		}
	})
}

func (c *Coordinator) stopDebounce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

// Evaluate runs one full pipeline pass: score, persist, broadcast, decide
// intervention. Persistence failures are logged and absorbed; only a
// disabled tracking flag surfaces as an error.
func (c *Coordinator) Evaluate(ctx context.Context) (float64, error) {
	if !c.state.TrackingEnabled(ctx) {
		return 0, fmt.Errorf("tracking disabled")
	}

	now := c.opts.Now()
	st := c.state.CurrentState(ctx)

	score := c.calc.Score(st.Settings.Sensitivity, now)
	view := c.metrics.View(now)

	if err := c.state.SaveSessionData(ctx, state.Session{
		Timestamp: now,
		Score:     score,
		Metrics:   view,
	}); err != nil {
		c.logger.Warn("session save failed", zap.Error(err))
	}
	if err := c.state.SaveMetricsSnapshot(ctx, c.metrics.Snapshot()); err != nil {
		c.logger.Warn("metrics persistence failed", zap.Error(err))
	}

	if c.listenerCount() > 0 {
		c.broadcast(Update{Type: "burnout_update", Data: c.BurnoutData(ctx)})
	}

	if st.Settings.InterventionsEnabled {
		if activation, fired := c.interventions.Evaluate(score, now); fired {
			c.broadcast(Update{Type: "intervention", Data: activation})
		}
	}

	return score, nil
}

// BurnoutData assembles the current score, metrics view, and hourly trend
// for UI collaborators.
func (c *Coordinator) BurnoutData(ctx context.Context) BurnoutData {
	now := c.opts.Now()
	st := c.state.CurrentState(ctx)

	return BurnoutData{
		CurrentScore: c.calc.CurrentScore(),
		Metrics:      c.metrics.View(now),
		WeeklyTrend:  formatTrend(st.TrendData),
		LastUpdated:  now,
		Status:       "success",
	}
}

// Refresh forces an immediate evaluation and returns the refreshed data.
func (c *Coordinator) Refresh(ctx context.Context) BurnoutData {
	if _, err := c.Evaluate(ctx); err != nil {
		return BurnoutData{Status: "error", Error: err.Error(), LastUpdated: c.opts.Now()}
	}
	return c.BurnoutData(ctx)
}

// Subscribe registers a listener channel for push updates. The channel is
// buffered; slow listeners miss updates rather than block the pipeline.
func (c *Coordinator) Subscribe() chan Update {
	ch := make(chan Update, 8)
	c.mu.Lock()
	c.listeners[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel.
func (c *Coordinator) Unsubscribe(ch chan Update) {
	c.mu.Lock()
	delete(c.listeners, ch)
	c.mu.Unlock()
}

func (c *Coordinator) listenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

func (c *Coordinator) broadcast(update Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.listeners {
		select {
		case ch <- update:
		default:
		}
	}
}

// InteractionCounts returns the diagnostic click/scroll tallies.
func (c *Coordinator) InteractionCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.interactions))
	for k, v := range c.interactions {
		out[k] = v
	}
	return out
}

// startBreak launches (or restarts) the break countdown. Progress and
// completion are pushed to listeners; completing a break clears any active
// interventions.
func (c *Coordinator) startBreak(ctx context.Context, minutes int) {
	if minutes <= 0 {
		return
	}

	duration := time.Duration(minutes) * c.opts.BreakTick

	timer := intervention.NewBreakTimer(duration, c.opts.BreakTick,
		func(percent float64) {
			c.broadcast(Update{Type: "break_progress", Data: percent})
		},
		func() {
			c.interventions.Clear(intervention.LevelModerate)
			c.interventions.Clear(intervention.LevelSevere)
			c.broadcast(Update{Type: "break_complete", Data: minutes})
		},
	)

	c.mu.Lock()
	if c.breakTimer != nil {
		c.breakTimer.Stop()
	}
	c.breakTimer = timer
	c.mu.Unlock()

	timer.Start(ctx)
	c.logger.Info("break timer started", zap.Int("minutes", minutes))
}

// formatTrend sorts the hour buckets and keeps the most recent points.
// Labels show the bucket hour as "HH:00".
func formatTrend(trendData map[string]state.TrendPoint) Trend {
	keys := make([]string, 0, len(trendData))
	for k := range trendData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > trendPoints {
		keys = keys[len(keys)-trendPoints:]
	}

	trend := Trend{Labels: []string{}, Values: []float64{}}
	for _, k := range keys {
		// Hour-bucket keys look like "2026-03-14T09".
		label := k
		if idx := len("2006-01-02T"); len(k) > idx {
			label = k[idx:]
		}
		trend.Labels = append(trend.Labels, label+":00")
		trend.Values = append(trend.Values, trendData[k].Score)
	}
	return trend
}
