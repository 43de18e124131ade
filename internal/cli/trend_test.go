package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/burnwatch/internal/state"
)

func TestTrend_PrintsSortedBuckets(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, hour := range []int{11, 9, 10} {
		ts := time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
		require.NoError(t, store.SaveSessionData(ctx, state.Session{
			Timestamp: ts,
			Score:     float64(hour) / 2,
		}))
	}

	cmd := &TrendCommand{Hours: 12, globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store)
	})
	require.NoError(t, err)

	var entries []trendEntryJSON
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "09:00", entries[0].Label)
	assert.Equal(t, "10:00", entries[1].Label)
	assert.Equal(t, "11:00", entries[2].Label)
	assert.Equal(t, 4.5, entries[0].Score)
}

func TestTrend_CapsToRequestedHours(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for hour := 0; hour < 15; hour++ {
		ts := time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
		require.NoError(t, store.SaveSessionData(ctx, state.Session{Timestamp: ts, Score: 1}))
	}

	cmd := &TrendCommand{Hours: 4, globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store)
	})
	require.NoError(t, err)

	var entries []trendEntryJSON
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "11:00", entries[0].Label)
	assert.Equal(t, "14:00", entries[3].Label)
}

func TestTrend_EmptyState(t *testing.T) {
	store, _ := openTestStore(t)

	cmd := &TrendCommand{Hours: 12, globals: &GlobalFlags{}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store)
	})

	require.NoError(t, err)
	assert.Contains(t, output, "No trend data")
}
