package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/state"
)

// Execute implements the go-flags Commander interface for SweepCommand.
// It prunes stale entries from the persisted metrics snapshot; the daemon
// runs the same sweep on its own interval, this is the manual path.
func (c *SweepCommand) Execute(args []string) error {
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

	return c.executeWithStore(store, time.Now())
}

// executeWithStore runs sweep against a provided store (for testing).
func (c *SweepCommand) executeWithStore(store state.Store, now time.Time) error {
	ctx := context.Background()

	snap, err := store.LoadMetricsSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load metrics snapshot: %w", err)
	}

	removed := 0
	if snap != nil {
		m := metrics.NewStore(now)
		m.Restore(*snap)
		removed = m.Sweep(now)

		if !c.DryRun && removed > 0 {
			if err := store.SaveMetricsSnapshot(ctx, m.Snapshot()); err != nil {
				return fmt.Errorf("save metrics snapshot: %w", err)
			}
		}
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(map[string]any{
			"removed": removed,
			"dry_run": c.DryRun,
		})
	}

	if c.DryRun {
		fmt.Printf("Would remove %d stale metric entries.\n", removed)
	} else {
		fmt.Printf("Removed %d stale metric entries.\n", removed)
	}
	return nil
}
