package metrics

import (
	"sync"
	"time"
)

// RetentionWindow is how long discrete events survive before a sweep
// removes them.
const RetentionWindow = 24 * time.Hour

// scoringWindow is the trailing window used by the derived rate views.
const scoringWindow = time.Hour

// Store is the in-memory rolling log of behavioral signals. All methods
// are safe for concurrent use. Every mutation bumps a generation counter
// so the score cache can detect staleness.
type Store struct {
	mu             sync.Mutex
	tabVelocity    []TabCreation
	attentionSpans []AttentionSpan
	switches       []TabSwitch
	youtube        VideoStats
	lastSwitchTime time.Time
	generation     uint64
}

// NewStore creates an empty Store. The first attention span is measured
// from now, so a tab opened before the daemon started still closes a
// plausible span on its first switch away.
func NewStore(now time.Time) *Store {
	return &Store{lastSwitchTime: now}
}

// RecordTabCreation appends a tab-creation event. A non-positive tab ID
// marks malformed input and is silently ignored.
func (s *Store) RecordTabCreation(tabID int, now time.Time) {
	if tabID <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabVelocity = append(s.tabVelocity, TabCreation{Timestamp: now, TabID: tabID})
	s.generation++
}

// RecordTabSwitch appends a switch event. When a distinct previous tab is
// known, the interval since the last switch is closed as an attention span
// attributed to that tab. A non-positive tab ID is silently ignored;
// previousTabID of zero means unknown.
func (s *Store) RecordTabSwitch(tabID, previousTabID int, now time.Time) {
	if tabID <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previousTabID > 0 && previousTabID != tabID {
		s.attentionSpans = append(s.attentionSpans, AttentionSpan{
			StartTime: s.lastSwitchTime,
			EndTime:   now,
			TabID:     previousTabID,
		})
	}

	s.switches = append(s.switches, TabSwitch{Timestamp: now, From: previousTabID, To: tabID})
	s.lastSwitchTime = now
	s.generation++
}

// RecordVideoActivity accumulates the video counters. Negative deltas are
// clamped to zero rather than allowed to decrement the monotone counters.
func (s *Store) RecordVideoActivity(videosWatched int, timeSpentSeconds float64, isBinge bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if videosWatched > 0 {
		s.youtube.VideosWatched += videosWatched
	}
	if timeSpentSeconds > 0 {
		s.youtube.TimeSpentSeconds += timeSpentSeconds
	}
	if isBinge {
		s.youtube.RelatedBinges++
	}
	s.generation++
}

// Sweep drops all discrete events older than the retention window relative
// to now. The video counters are never pruned. Returns the number of
// entries removed. Sweeping twice in a row removes nothing the second time.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-RetentionWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	kept := s.tabVelocity[:0]
	for _, tc := range s.tabVelocity {
		if !tc.Timestamp.Before(cutoff) {
			kept = append(kept, tc)
		} else {
			removed++
		}
	}
	s.tabVelocity = kept

	keptSw := s.switches[:0]
	for _, sw := range s.switches {
		if !sw.Timestamp.Before(cutoff) {
			keptSw = append(keptSw, sw)
		} else {
			removed++
		}
	}
	s.switches = keptSw

	keptSpans := s.attentionSpans[:0]
	for _, sp := range s.attentionSpans {
		if !sp.EndTime.Before(cutoff) {
			keptSpans = append(keptSpans, sp)
		} else {
			removed++
		}
	}
	s.attentionSpans = keptSpans

	if removed > 0 {
		s.generation++
	}
	return removed
}

// Snapshot exports a deep copy of the full metrics structure.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TabVelocity:    make([]TabCreation, len(s.tabVelocity)),
		AttentionSpans: make([]AttentionSpan, len(s.attentionSpans)),
		Switches:       make([]TabSwitch, len(s.switches)),
		YouTube:        s.youtube,
	}
	copy(snap.TabVelocity, s.tabVelocity)
	copy(snap.AttentionSpans, s.attentionSpans)
	copy(snap.Switches, s.switches)
	return snap
}

// Restore replaces the store contents with a previously exported snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tabVelocity = append([]TabCreation(nil), snap.TabVelocity...)
	s.attentionSpans = append([]AttentionSpan(nil), snap.AttentionSpans...)
	s.switches = append([]TabSwitch(nil), snap.Switches...)
	s.youtube = snap.YouTube
	s.generation++
}

// Generation returns the mutation counter. Two equal readings with no
// intervening mutation guarantee identical store contents.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// HourlyTabRate counts tab creations within the trailing hour.
func (s *Store) HourlyTabRate(now time.Time) int {
	cutoff := now.Add(-scoringWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, tc := range s.tabVelocity {
		if !tc.Timestamp.Before(cutoff) {
			n++
		}
	}
	return n
}

// AvgAttentionSpanMinutes averages the duration of attention spans ending
// within the trailing hour. With no recent spans it reports 10 minutes,
// which the scorer treats as healthy.
func (s *Store) AvgAttentionSpanMinutes(now time.Time) float64 {
	cutoff := now.Add(-scoringWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	n := 0
	for _, sp := range s.attentionSpans {
		if sp.EndTime.Before(cutoff) {
			continue
		}
		total += sp.EndTime.Sub(sp.StartTime).Minutes()
		n++
	}
	if n == 0 {
		return 10
	}
	return total / float64(n)
}

// SwitchesWithin counts tab switches within the trailing window.
func (s *Store) SwitchesWithin(window time.Duration, now time.Time) int {
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sw := range s.switches {
		if !sw.Timestamp.Before(cutoff) {
			n++
		}
	}
	return n
}

// Video returns the current video counters.
func (s *Store) Video() VideoStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.youtube
}

// VideoMinutes reports accumulated watch time in whole minutes.
func (s *Store) VideoMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.youtube.TimeSpentSeconds/60 + 0.5)
}

// View assembles the read-only summary handed to UI collaborators. Switch
// counts cover the trailing 30 minutes.
func (s *Store) View(now time.Time) View {
	return View{
		TabVelocity:      s.HourlyTabRate(now),
		AvgAttentionSpan: s.AvgAttentionSpanMinutes(now),
		TabSwitches:      s.SwitchesWithin(30*time.Minute, now),
		YouTubeTime:      s.VideoMinutes(),
		LastUpdated:      now,
	}
}
