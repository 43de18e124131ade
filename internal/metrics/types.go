package metrics

import "time"

// TabCreation records a single new-tab event.
type TabCreation struct {
	Timestamp time.Time `json:"timestamp"`
	TabID     int       `json:"tabId"`
}

// AttentionSpan is a closed interval during which one tab held focus.
type AttentionSpan struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	TabID     int       `json:"tabId"`
}

// TabSwitch records a foreground-tab change. From is zero when the
// previous tab is unknown.
type TabSwitch struct {
	Timestamp time.Time `json:"timestamp"`
	From      int       `json:"from"`
	To        int       `json:"to"`
}

// VideoStats accumulates video-watching counters. The counters are
// monotonically increasing and never pruned.
//
// TimeSpentSeconds is kept in whatever unit the reporting detector sends;
// the deployed detectors report seconds, but older producers sent minutes.
// This is a known contract risk with the content-script collaborator; the
// scoring formula and the display view each apply their own fixed divisor.
type VideoStats struct {
	VideosWatched    int     `json:"videosWatched"`
	TimeSpentSeconds float64 `json:"timeSpent"`
	RelatedBinges    int     `json:"relatedBinges"`
}

// Snapshot is the full exportable metrics structure, used for durability
// round-trips across daemon restarts.
type Snapshot struct {
	TabVelocity    []TabCreation   `json:"tabVelocity"`
	AttentionSpans []AttentionSpan `json:"attentionSpans"`
	Switches       []TabSwitch     `json:"switches"`
	YouTube        VideoStats      `json:"youtube"`
}

// View is the read-only metrics summary handed to UI collaborators.
type View struct {
	TabVelocity      int       `json:"tabVelocity"`
	AvgAttentionSpan float64   `json:"avgAttentionSpan"`
	TabSwitches      int       `json:"tabSwitches"`
	YouTubeTime      int       `json:"youtubeTime"`
	LastUpdated      time.Time `json:"lastUpdated"`
}
