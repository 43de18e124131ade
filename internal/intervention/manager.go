// Package intervention decides when the user should be prompted to take a
// break, and tracks which severity levels are currently active so the same
// prompt is never stacked.
package intervention

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level is an intervention severity.
type Level string

const (
	LevelModerate Level = "moderate"
	LevelSevere   Level = "severe"
)

// Activation identifies one fired intervention.
type Activation struct {
	ID          uuid.UUID `json:"id"`
	Level       Level     `json:"level"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// Notifier presents a fired intervention to the user. The presentation
// itself (notification, modal) belongs to the extension UI; implementations
// here only transport the activation.
type Notifier interface {
	ShowIntervention(activation Activation)
}

// Thresholds holds the trigger scores and per-level cooldowns.
type Thresholds struct {
	Severe           float64
	Moderate         float64
	SevereCooldown   time.Duration
	ModerateCooldown time.Duration
}

// DefaultThresholds returns the stock trigger configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Severe:           7.5,
		Moderate:         5.0,
		SevereCooldown:   5 * time.Minute,
		ModerateCooldown: 3 * time.Minute,
	}
}

// Manager is the intervention state machine. Each level is idle or active;
// an active level blocks re-triggering until cleared. A global cooldown
// since the last fired intervention gates new triggers per level.
type Manager struct {
	thresholds Thresholds
	notifier   Notifier
	logger     *zap.Logger

	mu               sync.Mutex
	active           map[Level]Activation
	lastIntervention time.Time
}

// NewManager creates a Manager. notifier may be nil, in which case fired
// interventions are only logged.
func NewManager(thresholds Thresholds, notifier Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		thresholds: thresholds,
		notifier:   notifier,
		logger:     logger,
		active:     map[Level]Activation{},
	}
}

// decide picks the level a score would trigger at now, honoring cooldowns.
// Severe is considered first; a score above the severe threshold that is
// still inside the severe cooldown does not fall through to moderate.
func (m *Manager) decide(score float64, now time.Time) (Level, bool) {
	sinceLast := now.Sub(m.lastIntervention)
	fresh := m.lastIntervention.IsZero()

	if score > m.thresholds.Severe {
		if fresh || sinceLast > m.thresholds.SevereCooldown {
			return LevelSevere, true
		}
		return "", false
	}
	if score > m.thresholds.Moderate {
		if fresh || sinceLast > m.thresholds.ModerateCooldown {
			return LevelModerate, true
		}
	}
	return "", false
}

// Evaluate applies the trigger decision for a freshly computed score.
// When a level fires, the cooldown clock restarts and the notifier is
// invoked, unless that level is already active, in which case the decision
// is a no-op. Returns the activation and whether one fired.
func (m *Manager) Evaluate(score float64, now time.Time) (Activation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.decide(score, now)
	if !ok {
		return Activation{}, false
	}

	if _, alreadyActive := m.active[level]; alreadyActive {
		return Activation{}, false
	}

	activation := Activation{ID: uuid.New(), Level: level, ActivatedAt: now}
	m.active[level] = activation
	m.lastIntervention = now

	m.logger.Info("intervention fired",
		zap.String("level", string(level)),
		zap.Float64("score", score),
		zap.String("activation_id", activation.ID.String()),
	)

	if m.notifier != nil {
		m.notifier.ShowIntervention(activation)
	}
	return activation, true
}

// Clear marks a level idle again, typically after the user dismisses the
// prompt or completes a break.
func (m *Manager) Clear(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, level)
}

// Active returns the current activation for a level, if any.
func (m *Manager) Active(level Level) (Activation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.active[level]
	return a, ok
}

// LastIntervention returns when the most recent intervention fired; the
// zero time means none has.
func (m *Manager) LastIntervention() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastIntervention
}
