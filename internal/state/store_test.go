package state

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/scoring"
)

// openTestStore creates a migrated in-memory Store for testing.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := NewSQLiteStore(db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestInitialize_WritesDefaultRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))

	st := store.CurrentState(ctx)
	assert.Empty(t, st.Sessions)
	assert.Empty(t, st.TrendData)
	assert.True(t, st.Settings.InterventionsEnabled)
	assert.Equal(t, scoring.SensitivityBalanced, st.Settings.Sensitivity)
	assert.Equal(t, []string{"meditation", "stretching"}, st.Settings.PreferredActivities)
	assert.Nil(t, st.LastCalculated)
}

func TestInitialize_Idempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))

	// Mutate, then re-initialize; the record must survive.
	aggressive := scoring.SensitivityAggressive
	require.NoError(t, store.UpdateSettings(ctx, SettingsPatch{Sensitivity: &aggressive}))

	require.NoError(t, store.Initialize(ctx))
	assert.Equal(t, scoring.SensitivityAggressive, store.CurrentState(ctx).Settings.Sensitivity)
}

func TestCurrentState_FallbackWithoutInitialize(t *testing.T) {
	store := openTestStore(t)

	// No record written yet: a default fallback is returned, not an error.
	st := store.CurrentState(context.Background())
	require.NotNil(t, st)
	assert.True(t, st.Settings.InterventionsEnabled)
}

func TestSaveSessionData_AppendsAndStampsLastCalculated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	session := Session{
		Timestamp: ts,
		Score:     3.5,
		Metrics:   metrics.View{TabVelocity: 7, AvgAttentionSpan: 4.2, LastUpdated: ts},
	}
	require.NoError(t, store.SaveSessionData(ctx, session))

	st := store.CurrentState(ctx)
	require.Len(t, st.Sessions, 1)
	assert.Equal(t, 3.5, st.Sessions[0].Score)
	assert.Equal(t, 7, st.Sessions[0].Metrics.TabVelocity)
	require.NotNil(t, st.LastCalculated)
	assert.True(t, st.LastCalculated.Equal(ts))
}

func TestSaveSessionData_CapsAtMaxSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxSessions+1; i++ {
		session := Session{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Score:     float64(i % 10),
		}
		require.NoError(t, store.SaveSessionData(ctx, session))
	}

	st := store.CurrentState(ctx)
	require.Len(t, st.Sessions, MaxSessions)
	// Exactly the oldest entry was evicted.
	assert.True(t, st.Sessions[0].Timestamp.Equal(base.Add(time.Minute)))
	assert.True(t, st.Sessions[MaxSessions-1].Timestamp.Equal(base.Add(time.Duration(MaxSessions)*time.Minute)))
}

func TestSaveSessionData_TrendUpsertLastWriteWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	ts1 := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)
	ts2 := time.Date(2026, 3, 14, 9, 55, 0, 0, time.UTC)
	require.NoError(t, store.SaveSessionData(ctx, Session{Timestamp: ts1, Score: 2.0}))
	require.NoError(t, store.SaveSessionData(ctx, Session{Timestamp: ts2, Score: 6.5}))

	st := store.CurrentState(ctx)
	require.Len(t, st.TrendData, 1, "same hour bucket must hold one entry")

	point, ok := st.TrendData["2026-03-14T09"]
	require.True(t, ok)
	assert.Equal(t, 6.5, point.Score, "later score wins")
	assert.True(t, point.Timestamp.Equal(ts2))
}

func TestSaveSessionData_DistinctHoursGetDistinctBuckets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	require.NoError(t, store.SaveSessionData(ctx, Session{
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), Score: 2.0,
	}))
	require.NoError(t, store.SaveSessionData(ctx, Session{
		Timestamp: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC), Score: 4.0,
	}))

	st := store.CurrentState(ctx)
	assert.Len(t, st.TrendData, 2)
}

func TestUpdateSettings_MergesOnlyGivenFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	disabled := false
	require.NoError(t, store.UpdateSettings(ctx, SettingsPatch{InterventionsEnabled: &disabled}))

	st := store.CurrentState(ctx)
	assert.False(t, st.Settings.InterventionsEnabled)
	// Untouched fields keep their defaults.
	assert.Equal(t, scoring.SensitivityBalanced, st.Settings.Sensitivity)
	assert.Equal(t, []string{"meditation", "stretching"}, st.Settings.PreferredActivities)
}

func TestUpdateSettings_RejectsUnknownSensitivity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	bogus := scoring.Sensitivity("extreme")
	err := store.UpdateSettings(ctx, SettingsPatch{Sensitivity: &bogus})
	assert.Error(t, err)
}

func TestExportData(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.SaveSessionData(ctx, Session{
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Score: 1.0,
	}))

	export, err := store.ExportData(ctx)
	require.NoError(t, err)
	assert.Len(t, export.Sessions, 1)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestResetData_ClearsEverything(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.SaveSessionData(ctx, Session{
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Score: 8.0,
	}))

	require.NoError(t, store.ResetData(ctx))

	st := store.CurrentState(ctx)
	assert.Empty(t, st.Sessions)
	assert.Empty(t, st.TrendData)
	assert.Nil(t, st.LastCalculated)
}

func TestMetricsSnapshot_Roundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Nothing persisted yet.
	snap, err := store.LoadMetricsSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ms := metrics.NewStore(now)
	ms.RecordTabCreation(1, now)
	ms.RecordTabSwitch(2, 1, now.Add(time.Minute))
	ms.RecordVideoActivity(1, 75, true)

	require.NoError(t, store.SaveMetricsSnapshot(ctx, ms.Snapshot()))

	snap, err = store.LoadMetricsSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)

	orig := ms.Snapshot()
	require.Len(t, snap.TabVelocity, 1)
	assert.Equal(t, orig.TabVelocity[0].TabID, snap.TabVelocity[0].TabID)
	assert.True(t, snap.TabVelocity[0].Timestamp.Equal(orig.TabVelocity[0].Timestamp))
	require.Len(t, snap.AttentionSpans, 1)
	assert.True(t, snap.AttentionSpans[0].EndTime.Equal(orig.AttentionSpans[0].EndTime))
	require.Len(t, snap.Switches, 1)
	assert.Equal(t, orig.Switches[0].To, snap.Switches[0].To)
	assert.Equal(t, orig.YouTube, snap.YouTube)
}

func TestTrackingEnabled_DefaultsTrue(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.True(t, store.TrackingEnabled(ctx))

	require.NoError(t, store.SetTrackingEnabled(ctx, false))
	assert.False(t, store.TrackingEnabled(ctx))

	require.NoError(t, store.SetTrackingEnabled(ctx, true))
	assert.True(t, store.TrackingEnabled(ctx))
}

func TestHourKey(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2026, 3, 14, 9, 59, 59, 0, time.UTC), "2026-03-14T09"},
		{time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), "2026-03-14T10"},
		{time.Date(2026, 12, 1, 0, 5, 0, 0, time.UTC), "2026-12-01T00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HourKey(tc.t), fmt.Sprintf("t=%v", tc.t))
	}
}
