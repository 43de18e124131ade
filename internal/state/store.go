// Package state persists the burnout record, the raw metrics snapshot,
// and the tracking flag in SQLite, behind a short-TTL read cache.
//
// Every write is a whole-record replace. A save reads current state,
// merges, then writes back; two overlapping saves can therefore lose the
// first writer's update. That race is accepted for this workload (low
// event rate, non-critical data) and deliberately not serialized here.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/metrics"
)

// cacheTTL bounds how long a cached read of the burnout record is reused.
const cacheTTL = 30 * time.Second

// Top-level storage keys.
const (
	keyBurnoutData     = "burnout_data"
	keySessionMetrics  = "session_metrics"
	keyTrackingEnabled = "tracking_enabled"
)

// Store defines the interface for burnwatch state operations.
type Store interface {
	Initialize(ctx context.Context) error
	CurrentState(ctx context.Context) *BurnoutState
	SaveSessionData(ctx context.Context, session Session) error
	UpdateSettings(ctx context.Context, patch SettingsPatch) error
	ExportData(ctx context.Context) (*Export, error)
	ResetData(ctx context.Context) error
	SaveMetricsSnapshot(ctx context.Context, snap metrics.Snapshot) error
	LoadMetricsSnapshot(ctx context.Context) (*metrics.Snapshot, error)
	TrackingEnabled(ctx context.Context) bool
	SetTrackingEnabled(ctx context.Context, enabled bool) error
	Close() error
}

// SQLiteStore implements Store backed by a SQLite key-value table.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger

	// Prepared statements
	getValue *sql.Stmt
	setValue *sql.Stmt

	// Read cache for the burnout record
	mu       sync.Mutex
	cache    *BurnoutState
	cachedAt time.Time
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SQLiteStore{db: db, logger: logger}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM app_state WHERE key = ?`)
	if err != nil {
		return err
	}

	s.setValue, err = s.db.Prepare(`
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	return nil
}

// Initialize writes the default burnout record if none exists. Idempotent.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	var existing json.RawMessage
	found, err := s.LoadRawValue(ctx, keyBurnoutData, &existing)
	if err != nil {
		return fmt.Errorf("check existing state: %w", err)
	}

	if !found {
		if err := s.writeState(ctx, DefaultState()); err != nil {
			return fmt.Errorf("write default state: %w", err)
		}
	}
	return nil
}

// CurrentState returns the burnout record, served from cache when fresh.
// A read failure degrades to a hardcoded fallback record rather than
// failing the caller; the failure is logged.
func (s *SQLiteStore) CurrentState(ctx context.Context) *BurnoutState {
	s.mu.Lock()
	if s.cache != nil && time.Since(s.cachedAt) < cacheTTL {
		cached := s.cache
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	var st BurnoutState
	ok, err := s.LoadRawValue(ctx, keyBurnoutData, &st)
	if err != nil || !ok {
		s.logger.Warn("state read failed, using fallback record", zap.Error(err))
		return DefaultState()
	}
	if st.TrendData == nil {
		st.TrendData = map[string]TrendPoint{}
	}

	s.mu.Lock()
	s.cache = &st
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return &st
}

// SaveSessionData appends a session to the history (capped at MaxSessions,
// oldest evicted first), upserts the hour-bucket trend entry for its
// timestamp, stamps lastCalculated, and writes the full merged record back.
func (s *SQLiteStore) SaveSessionData(ctx context.Context, session Session) error {
	st := s.CurrentState(ctx)

	updated := *st
	updated.Sessions = append(append([]Session{}, st.Sessions...), session)
	if len(updated.Sessions) > MaxSessions {
		updated.Sessions = updated.Sessions[len(updated.Sessions)-MaxSessions:]
	}

	updated.TrendData = make(map[string]TrendPoint, len(st.TrendData)+1)
	for k, v := range st.TrendData {
		updated.TrendData[k] = v
	}
	updated.TrendData[HourKey(session.Timestamp)] = TrendPoint{
		Score:     session.Score,
		Timestamp: session.Timestamp,
	}

	ts := session.Timestamp
	updated.LastCalculated = &ts

	if err := s.writeState(ctx, &updated); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UpdateSettings merges a partial settings update into the record.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	st := s.CurrentState(ctx)

	updated := *st
	if patch.InterventionsEnabled != nil {
		updated.Settings.InterventionsEnabled = *patch.InterventionsEnabled
	}
	if patch.Sensitivity != nil {
		if !patch.Sensitivity.Valid() {
			return fmt.Errorf("unknown sensitivity %q", *patch.Sensitivity)
		}
		updated.Settings.Sensitivity = *patch.Sensitivity
	}
	if patch.PreferredActivities != nil {
		updated.Settings.PreferredActivities = append([]string{}, (*patch.PreferredActivities)...)
	}

	if err := s.writeState(ctx, &updated); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// ExportData returns the full record plus an export timestamp.
func (s *SQLiteStore) ExportData(ctx context.Context) (*Export, error) {
	st := s.CurrentState(ctx)
	return &Export{BurnoutState: *st, ExportedAt: time.Now().UTC()}, nil
}

// ResetData reinitializes the record to defaults and clears the cache.
func (s *SQLiteStore) ResetData(ctx context.Context) error {
	if err := s.writeState(ctx, DefaultState()); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	return nil
}

// SaveRawValue stores an arbitrary JSON-encodable value under a top-level
// key. Used for the metrics snapshot and the tracking flag.
func (s *SQLiteStore) SaveRawValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if _, err := s.setValue.ExecContext(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadRawValue reads a top-level key into out. Returns false with no error
// when the key is absent.
func (s *SQLiteStore) LoadRawValue(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := s.getValue.QueryRowContext(ctx, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveMetricsSnapshot persists the raw metrics for restart recovery.
func (s *SQLiteStore) SaveMetricsSnapshot(ctx context.Context, snap metrics.Snapshot) error {
	return s.SaveRawValue(ctx, keySessionMetrics, snap)
}

// LoadMetricsSnapshot reads the persisted raw metrics. Returns nil with no
// error when no snapshot has been written yet.
func (s *SQLiteStore) LoadMetricsSnapshot(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	found, err := s.LoadRawValue(ctx, keySessionMetrics, &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &snap, nil
}

// TrackingEnabled reports whether event ingestion is enabled. Absence of
// the flag, or a read failure, defaults to true.
func (s *SQLiteStore) TrackingEnabled(ctx context.Context) bool {
	var enabled bool
	ok, err := s.LoadRawValue(ctx, keyTrackingEnabled, &enabled)
	if err != nil {
		s.logger.Warn("tracking flag read failed, defaulting to enabled", zap.Error(err))
		return true
	}
	if !ok {
		return true
	}
	return enabled
}

// SetTrackingEnabled persists the tracking flag.
func (s *SQLiteStore) SetTrackingEnabled(ctx context.Context, enabled bool) error {
	return s.SaveRawValue(ctx, keyTrackingEnabled, enabled)
}

// writeState replaces the burnout record and refreshes the cache.
func (s *SQLiteStore) writeState(ctx context.Context, st *BurnoutState) error {
	if err := s.SaveRawValue(ctx, keyBurnoutData, st); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = st
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.getValue, s.setValue} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
