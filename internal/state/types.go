package state

import (
	"time"

	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/scoring"
)

// MaxSessions caps the session history; the oldest entries are evicted
// first when a save would exceed it.
const MaxSessions = 100

// Session is one scored snapshot of the metrics view.
type Session struct {
	Timestamp time.Time    `json:"timestamp"`
	Score     float64      `json:"score"`
	Metrics   metrics.View `json:"metrics"`
}

// TrendPoint is the hourly trend value; one per hour bucket,
// last write wins within the hour.
type TrendPoint struct {
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Settings holds the user-facing preferences.
type Settings struct {
	InterventionsEnabled bool                `json:"interventionsEnabled"`
	Sensitivity          scoring.Sensitivity `json:"sensitivity"`
	PreferredActivities  []string            `json:"preferredActivities"`
}

// SettingsPatch is a partial settings update; nil fields are untouched.
type SettingsPatch struct {
	InterventionsEnabled *bool                `json:"interventionsEnabled,omitempty"`
	Sensitivity          *scoring.Sensitivity `json:"sensitivity,omitempty"`
	PreferredActivities  *[]string            `json:"preferredActivities,omitempty"`
}

// BurnoutState is the single durable record: session history, hourly
// trend index, settings, and the last calculation timestamp.
type BurnoutState struct {
	Sessions       []Session             `json:"sessions"`
	TrendData      map[string]TrendPoint `json:"trendData"`
	Settings       Settings              `json:"settings"`
	LastCalculated *time.Time            `json:"lastCalculated"`
}

// Export is the full state plus an export timestamp, for external use.
type Export struct {
	BurnoutState
	ExportedAt time.Time `json:"_exportedAt"`
}

// DefaultState returns the record written on first run.
func DefaultState() *BurnoutState {
	return &BurnoutState{
		Sessions:  []Session{},
		TrendData: map[string]TrendPoint{},
		Settings: Settings{
			InterventionsEnabled: true,
			Sensitivity:          scoring.SensitivityBalanced,
			PreferredActivities:  []string{"meditation", "stretching"},
		},
	}
}

// HourKey formats a timestamp into the trend index key for its calendar
// hour, e.g. "2026-03-14T09".
func HourKey(t time.Time) string {
	return t.Format("2006-01-02T15")
}
