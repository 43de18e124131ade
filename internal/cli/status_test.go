package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/state"
)

func TestStatus_HumanOutput(t *testing.T) {
	store, db := openTestStore(t)
	require.NoError(t, store.SaveSessionData(context.Background(), state.Session{
		Timestamp: t0,
		Score:     4.2,
	}))

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "test"}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(config.DefaultConfig(), store, db)
	})

	require.NoError(t, err)
	assert.Contains(t, output, "Burnwatch Status")
	assert.Contains(t, output, "Sessions:      1")
	assert.Contains(t, output, "Tracking:      enabled")
	assert.Contains(t, output, "Sensitivity:   balanced")
}

func TestStatus_JSONOutput(t *testing.T) {
	store, db := openTestStore(t)

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(config.DefaultConfig(), store, db)
	})
	require.NoError(t, err)

	var out statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "1.0.0", out.Version)
	assert.Equal(t, 0, out.Sessions)
	assert.True(t, out.TrackingEnabled)
	assert.Equal(t, "balanced", out.Sensitivity)
	assert.Equal(t, 24, out.RetentionHours)
}
