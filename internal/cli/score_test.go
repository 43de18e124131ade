package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/burnwatch/internal/metrics"
)

func seedTabStorm(t *testing.T, store interface {
	SaveMetricsSnapshot(ctx context.Context, snap metrics.Snapshot) error
}) {
	t.Helper()
	m := metrics.NewStore(t0)
	for i := 1; i <= 16; i++ {
		m.RecordTabCreation(i, t0.Add(time.Duration(i)*time.Minute))
	}
	require.NoError(t, store.SaveMetricsSnapshot(context.Background(), m.Snapshot()))
}

func TestScore_FromSnapshot(t *testing.T) {
	store, _ := openTestStore(t)
	seedTabStorm(t, store)

	cmd := &ScoreCommand{globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store, t0.Add(30*time.Minute))
	})
	require.NoError(t, err)

	var out scoreJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 4.0, out.Score)
	assert.Equal(t, 3.0, out.VelocityScore)
	assert.Equal(t, 1.0, out.AttentionScore)
	assert.Equal(t, 0.0, out.VideoScore)
	assert.Equal(t, 16, out.TabsPerHour)
	assert.Equal(t, "balanced", out.Sensitivity)
}

func TestScore_SensitivityOverride(t *testing.T) {
	store, _ := openTestStore(t)
	seedTabStorm(t, store)

	cmd := &ScoreCommand{Sensitivity: "aggressive", globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store, t0.Add(30*time.Minute))
	})
	require.NoError(t, err)

	var out scoreJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 4.8, out.Score)
}

func TestScore_RejectsUnknownSensitivity(t *testing.T) {
	store, _ := openTestStore(t)

	cmd := &ScoreCommand{Sensitivity: "extreme", globals: &GlobalFlags{}}
	err := cmd.executeWithStore(store, t0)
	assert.Error(t, err)
}

func TestScore_EmptyStoreScoresAttentionDefaultOnly(t *testing.T) {
	store, _ := openTestStore(t)

	cmd := &ScoreCommand{globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(store, t0)
	})
	require.NoError(t, err)

	var out scoreJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 1.0, out.Score)
}
