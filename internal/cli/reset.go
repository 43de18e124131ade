package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/state"
)

// Execute implements the go-flags Commander interface for ResetCommand.
func (c *ResetCommand) Execute(args []string) error {
	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL burnwatch data.")
		fmt.Println("  - All recorded sessions")
		fmt.Println("  - All trend history")
		fmt.Println("  - All settings (reset to defaults)")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "RESET" to confirm: `)

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "RESET" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

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

// executeWithStore runs reset against a provided store (for testing).
func (c *ResetCommand) executeWithStore(store state.Store) error {
	if err := store.ResetData(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(map[string]any{
			"reset":   true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Reset all data. Burnwatch is back to defaults.")
	return nil
}
