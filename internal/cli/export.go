package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/state"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
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

	return c.executeWithStore(store)
}

// executeWithStore runs export against a provided store (for testing).
func (c *ExportCommand) executeWithStore(store state.Store) error {
	export, err := store.ExportData(context.Background())
	if err != nil {
		return fmt.Errorf("export data: %w", err)
	}

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if c.Output != "" {
		fmt.Printf("Exported %d sessions to %s\n", len(export.Sessions), c.Output)
	}
	return nil
}
