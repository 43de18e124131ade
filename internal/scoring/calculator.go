package scoring

import (
	"sync"
	"time"

	"github.com/runnerr0/burnwatch/internal/metrics"
)

// CacheTTL is how long a computed score may be reused when the metrics
// store has not changed underneath it.
const CacheTTL = 30 * time.Second

// Calculator computes the composite score with a short-lived cache. A
// cached value is reused for requests within CacheTTL of its computation,
// but any metrics mutation (detected via the store's generation counter)
// invalidates it immediately regardless of elapsed time.
type Calculator struct {
	store *metrics.Store

	mu        sync.Mutex
	cached    float64
	cachedAt  time.Time
	cachedGen uint64
	hasCache  bool
}

// NewCalculator creates a Calculator reading from the given store.
func NewCalculator(store *metrics.Store) *Calculator {
	return &Calculator{store: store}
}

// Score returns the composite burnout score, recomputing only when the
// cache is stale. Never fails: an unrecognized sensitivity falls back to
// the balanced multiplier inside Compute.
func (c *Calculator) Score(sensitivity Sensitivity, now time.Time) float64 {
	gen := c.store.Generation()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasCache && gen == c.cachedGen && now.Sub(c.cachedAt) < CacheTTL {
		return c.cached
	}

	score := Compute(c.store, sensitivity, now)
	c.cached = score
	c.cachedAt = now
	c.cachedGen = gen
	c.hasCache = true
	return score
}

// CurrentScore returns the last computed score without recomputing, or 0
// when nothing has been computed yet.
func (c *Calculator) CurrentScore() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasCache {
		return 0
	}
	return c.cached
}

// Invalidate discards the cached score. Mutations are normally detected
// through the generation counter; this is for callers that change scoring
// inputs outside the store, such as a sensitivity settings update.
func (c *Calculator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasCache = false
}
