package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/state"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string  `json:"version"`
	DatabasePath      string  `json:"database_path"`
	DatabaseSizeBytes int64   `json:"database_size_bytes"`
	Sessions          int     `json:"sessions"`
	TrendBuckets      int     `json:"trend_buckets"`
	LastCalculated    string  `json:"last_calculated,omitempty"`
	TrackingEnabled   bool    `json:"tracking_enabled"`
	Sensitivity       string  `json:"sensitivity"`
	Interventions     bool    `json:"interventions_enabled"`
	RetentionHours    int     `json:"retention_hours"`
	DaemonRunning     bool    `json:"daemon_running"`
	LatestScore       float64 `json:"latest_score"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, db, err := openStore(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(cfg, store, db)
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(cfg *config.Config, store state.Store, db *sql.DB) error {
	st := store.CurrentState(context.Background())

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: databaseSize(db, dbPath),
		Sessions:          len(st.Sessions),
		TrendBuckets:      len(st.TrendData),
		TrackingEnabled:   store.TrackingEnabled(context.Background()),
		Sensitivity:       string(st.Settings.Sensitivity),
		Interventions:     st.Settings.InterventionsEnabled,
		RetentionHours:    cfg.Tracking.RetentionHours,
		DaemonRunning:     checkDaemon(cfg),
	}
	if st.LastCalculated != nil {
		out.LastCalculated = st.LastCalculated.UTC().Format(time.RFC3339)
	}
	if n := len(st.Sessions); n > 0 {
		out.LatestScore = st.Sessions[n-1].Score
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printStatusHuman(out)
}

func printStatusHuman(out statusJSON) error {
	fmt.Println("Burnwatch Status")
	fmt.Println("================")
	fmt.Printf("Version:       %s\n", out.Version)
	fmt.Printf("Database:      %s (%s)\n", out.DatabasePath, formatBytes(out.DatabaseSizeBytes))
	fmt.Printf("Sessions:      %d\n", out.Sessions)
	fmt.Printf("Trend buckets: %d\n", out.TrendBuckets)
	if out.LastCalculated != "" {
		fmt.Printf("Last score:    %.1f at %s\n", out.LatestScore, out.LastCalculated)
	}
	fmt.Printf("Retention:     %d hours\n", out.RetentionHours)
	fmt.Printf("Sensitivity:   %s\n", out.Sensitivity)

	if out.TrackingEnabled {
		fmt.Println("Tracking:      enabled")
	} else {
		fmt.Println("Tracking:      disabled")
	}
	if out.Interventions {
		fmt.Println("Interventions: enabled")
	} else {
		fmt.Println("Interventions: disabled")
	}

	fmt.Println()
	if out.DaemonRunning {
		fmt.Println("Daemon:        running")
	} else {
		fmt.Println("Daemon:        not running")
	}

	return nil
}
