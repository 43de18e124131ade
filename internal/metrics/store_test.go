package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestRecordTabCreation(t *testing.T) {
	s := NewStore(t0)

	s.RecordTabCreation(1, t0)
	s.RecordTabCreation(2, t0.Add(time.Minute))

	snap := s.Snapshot()
	require.Len(t, snap.TabVelocity, 2)
	assert.Equal(t, 1, snap.TabVelocity[0].TabID)
	assert.Equal(t, t0.Add(time.Minute), snap.TabVelocity[1].Timestamp)
}

func TestRecordTabCreation_MalformedInputIgnored(t *testing.T) {
	s := NewStore(t0)
	gen := s.Generation()

	s.RecordTabCreation(0, t0)
	s.RecordTabCreation(-5, t0)

	assert.Empty(t, s.Snapshot().TabVelocity)
	assert.Equal(t, gen, s.Generation(), "malformed input must not mutate")
}

func TestRecordTabSwitch_ClosesAttentionSpan(t *testing.T) {
	s := NewStore(t0)

	// Switch to tab 2 away from tab 1 after five minutes on tab 1.
	s.RecordTabSwitch(2, 1, t0.Add(5*time.Minute))

	snap := s.Snapshot()
	require.Len(t, snap.AttentionSpans, 1)
	assert.Equal(t, 1, snap.AttentionSpans[0].TabID)
	assert.Equal(t, t0, snap.AttentionSpans[0].StartTime)
	assert.Equal(t, t0.Add(5*time.Minute), snap.AttentionSpans[0].EndTime)

	require.Len(t, snap.Switches, 1)
	assert.Equal(t, 1, snap.Switches[0].From)
	assert.Equal(t, 2, snap.Switches[0].To)
}

func TestRecordTabSwitch_NoPreviousTabRecordsSwitchOnly(t *testing.T) {
	s := NewStore(t0)

	s.RecordTabSwitch(3, 0, t0.Add(time.Minute))

	snap := s.Snapshot()
	assert.Empty(t, snap.AttentionSpans)
	require.Len(t, snap.Switches, 1)
	assert.Equal(t, 0, snap.Switches[0].From)
}

func TestRecordTabSwitch_SameTabRecordsSwitchOnly(t *testing.T) {
	s := NewStore(t0)

	s.RecordTabSwitch(3, 3, t0.Add(time.Minute))

	snap := s.Snapshot()
	assert.Empty(t, snap.AttentionSpans)
	assert.Len(t, snap.Switches, 1)
}

func TestRecordTabSwitch_SpanCountMatchesDistinctSwitches(t *testing.T) {
	s := NewStore(t0)

	// Alternate 1 -> 2 -> 1 -> 2 with a same-tab and an unknown-previous
	// switch mixed in.
	now := t0
	pairs := []struct{ to, prev int }{
		{2, 1}, {1, 2}, {1, 1}, {2, 0}, {1, 2}, {2, 1},
	}
	distinct := 0
	for _, p := range pairs {
		now = now.Add(time.Minute)
		s.RecordTabSwitch(p.to, p.prev, now)
		if p.prev > 0 && p.prev != p.to {
			distinct++
		}
	}

	snap := s.Snapshot()
	assert.Len(t, snap.Switches, len(pairs))
	assert.Len(t, snap.AttentionSpans, distinct)
}

func TestRecordVideoActivity(t *testing.T) {
	s := NewStore(t0)

	s.RecordVideoActivity(2, 90, true)
	s.RecordVideoActivity(1, 30, false)

	v := s.Video()
	assert.Equal(t, 3, v.VideosWatched)
	assert.Equal(t, 120.0, v.TimeSpentSeconds)
	assert.Equal(t, 1, v.RelatedBinges)
}

func TestRecordVideoActivity_NegativeDeltasClamped(t *testing.T) {
	s := NewStore(t0)

	s.RecordVideoActivity(5, 100, false)
	s.RecordVideoActivity(-3, -50, false)

	v := s.Video()
	assert.Equal(t, 5, v.VideosWatched)
	assert.Equal(t, 100.0, v.TimeSpentSeconds)
}

func TestSweep_DropsEntriesOlderThanWindow(t *testing.T) {
	s := NewStore(t0.Add(-30 * time.Hour))

	s.RecordTabCreation(1, t0.Add(-25*time.Hour))
	s.RecordTabCreation(2, t0.Add(-time.Hour))
	s.RecordTabSwitch(2, 1, t0.Add(-26*time.Hour))
	s.RecordTabSwitch(1, 2, t0.Add(-time.Minute))
	s.RecordVideoActivity(1, 60, false)

	removed := s.Sweep(t0)
	assert.Equal(t, 3, removed) // old creation, old switch, old span

	snap := s.Snapshot()
	assert.Len(t, snap.TabVelocity, 1)
	assert.Len(t, snap.Switches, 1)
	// The surviving span ends at t0-1m, inside the window.
	assert.Len(t, snap.AttentionSpans, 1)
	// Video counters are never pruned.
	assert.Equal(t, 1, snap.YouTube.VideosWatched)
}

func TestSweep_Idempotent(t *testing.T) {
	s := NewStore(t0.Add(-30 * time.Hour))

	s.RecordTabCreation(1, t0.Add(-25*time.Hour))
	s.RecordTabCreation(2, t0.Add(-time.Hour))
	s.RecordTabSwitch(2, 1, t0.Add(-10*time.Minute))

	s.Sweep(t0)
	first := s.Snapshot()

	removed := s.Sweep(t0)
	assert.Zero(t, removed)
	assert.Equal(t, first, s.Snapshot())
}

func TestSnapshotRestore_Roundtrip(t *testing.T) {
	s := NewStore(t0)
	s.RecordTabCreation(1, t0)
	s.RecordTabSwitch(2, 1, t0.Add(time.Minute))
	s.RecordVideoActivity(1, 45, true)

	snap := s.Snapshot()

	restored := NewStore(t0.Add(time.Hour))
	restored.Restore(snap)
	assert.Equal(t, snap, restored.Snapshot())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore(t0)
	s.RecordTabCreation(1, t0)

	snap := s.Snapshot()
	snap.TabVelocity[0].TabID = 999

	assert.Equal(t, 1, s.Snapshot().TabVelocity[0].TabID)
}

func TestGeneration_BumpsOnEveryMutation(t *testing.T) {
	s := NewStore(t0)
	gen := s.Generation()

	s.RecordTabCreation(1, t0)
	assert.Greater(t, s.Generation(), gen)

	gen = s.Generation()
	s.RecordVideoActivity(0, 0, true)
	assert.Greater(t, s.Generation(), gen)
}

func TestHourlyTabRate(t *testing.T) {
	s := NewStore(t0)

	s.RecordTabCreation(1, t0.Add(-2*time.Hour)) // outside window
	s.RecordTabCreation(2, t0.Add(-30*time.Minute))
	s.RecordTabCreation(3, t0.Add(-time.Minute))

	assert.Equal(t, 2, s.HourlyTabRate(t0))
}

func TestAvgAttentionSpanMinutes(t *testing.T) {
	s := NewStore(t0.Add(-20 * time.Minute))

	// Two spans: 4 minutes and 6 minutes, both ending recently.
	s.RecordTabSwitch(2, 1, t0.Add(-16*time.Minute))
	s.RecordTabSwitch(1, 2, t0.Add(-10*time.Minute))

	assert.InDelta(t, 5.0, s.AvgAttentionSpanMinutes(t0), 0.001)
}

func TestAvgAttentionSpanMinutes_DefaultsToTenWithNoSpans(t *testing.T) {
	s := NewStore(t0)
	assert.Equal(t, 10.0, s.AvgAttentionSpanMinutes(t0))
}

func TestAvgAttentionSpanMinutes_IgnoresOldSpans(t *testing.T) {
	s := NewStore(t0.Add(-3 * time.Hour))

	s.RecordTabSwitch(2, 1, t0.Add(-2*time.Hour)) // span ends outside window

	assert.Equal(t, 10.0, s.AvgAttentionSpanMinutes(t0))
}

func TestSwitchesWithin(t *testing.T) {
	s := NewStore(t0)

	s.RecordTabSwitch(2, 1, t0.Add(-45*time.Minute))
	s.RecordTabSwitch(1, 2, t0.Add(-20*time.Minute))
	s.RecordTabSwitch(2, 1, t0.Add(-5*time.Minute))

	assert.Equal(t, 2, s.SwitchesWithin(30*time.Minute, t0))
	assert.Equal(t, 3, s.SwitchesWithin(time.Hour, t0))
}

func TestVideoMinutes_Rounds(t *testing.T) {
	s := NewStore(t0)
	s.RecordVideoActivity(1, 150, false) // 2.5 minutes

	assert.Equal(t, 3, s.VideoMinutes())
}

func TestView(t *testing.T) {
	s := NewStore(t0.Add(-time.Hour))

	s.RecordTabCreation(1, t0.Add(-10*time.Minute))
	s.RecordTabSwitch(2, 1, t0.Add(-5*time.Minute))
	s.RecordVideoActivity(1, 120, false)

	v := s.View(t0)
	assert.Equal(t, 1, v.TabVelocity)
	assert.Equal(t, 1, v.TabSwitches)
	assert.Equal(t, 2, v.YouTubeTime)
	assert.Equal(t, t0, v.LastUpdated)
	assert.InDelta(t, 55.0, v.AvgAttentionSpan, 0.001)
}
