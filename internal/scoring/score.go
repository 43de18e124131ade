// Package scoring turns the rolling metrics into the 0-10 composite
// burnout score. The sub-score formulas are pure; Calculator adds the
// short-lived cache that bounds recomputation frequency.
package scoring

import (
	"math"
	"time"

	"github.com/runnerr0/burnwatch/internal/metrics"
)

// Sensitivity scales the raw composite score.
type Sensitivity string

const (
	SensitivityGentle     Sensitivity = "gentle"
	SensitivityBalanced   Sensitivity = "balanced"
	SensitivityAggressive Sensitivity = "aggressive"
)

// Multiplier returns the scalar applied to the raw composite. Unknown
// values fall back to balanced.
func (s Sensitivity) Multiplier() float64 {
	switch s {
	case SensitivityGentle:
		return 0.8
	case SensitivityAggressive:
		return 1.2
	default:
		return 1.0
	}
}

// Valid reports whether s is one of the three recognized levels.
func (s Sensitivity) Valid() bool {
	return s == SensitivityGentle || s == SensitivityBalanced || s == SensitivityAggressive
}

// VelocityScore buckets the trailing-hour tab creation count into 0-3.
func VelocityScore(hourlyRate int) float64 {
	switch {
	case hourlyRate >= 15:
		return 3
	case hourlyRate >= 10:
		return 2
	case hourlyRate >= 5:
		return 1
	default:
		return 0
	}
}

// AttentionScore buckets the average attention span (minutes) into 1-3.
// Shorter spans mean more fragmentation and score higher.
func AttentionScore(avgMinutes float64) float64 {
	switch {
	case avgMinutes < 2:
		return 3
	case avgMinutes < 5:
		return 2
	default:
		return 1
	}
}

// VideoScore combines binge count and accumulated watch time into 0-4.
func VideoScore(v metrics.VideoStats) float64 {
	binge := float64(v.RelatedBinges) * 0.5
	timed := math.Min(3, v.TimeSpentSeconds/30)
	return math.Min(4, binge+timed)
}

// Composite applies the sensitivity multiplier, caps at 10, and rounds to
// one decimal place.
func Composite(velocity, attention, video float64, sensitivity Sensitivity) float64 {
	raw := (velocity + attention + video) * sensitivity.Multiplier()
	return math.Round(math.Min(10, raw)*10) / 10
}

// Compute derives the composite score from the store's current contents.
// Deterministic given the store state, sensitivity, and now.
func Compute(store *metrics.Store, sensitivity Sensitivity, now time.Time) float64 {
	velocity := VelocityScore(store.HourlyTabRate(now))
	attention := AttentionScore(store.AvgAttentionSpanMinutes(now))
	video := VideoScore(store.Video())
	return Composite(velocity, attention, video, sensitivity)
}
