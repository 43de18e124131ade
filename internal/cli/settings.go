package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/scoring"
	"github.com/runnerr0/burnwatch/internal/state"
)

// Execute implements the go-flags Commander interface for SettingsCommand.
// With no flags it prints the stored settings; any flag patches them.
func (c *SettingsCommand) Execute(args []string) error {
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

// executeWithStore runs settings against a provided store (for testing).
func (c *SettingsCommand) executeWithStore(store state.Store) error {
	ctx := context.Background()

	patch, hasPatch, err := c.buildPatch()
	if err != nil {
		return err
	}
	if hasPatch {
		if err := store.UpdateSettings(ctx, patch); err != nil {
			return err
		}
	}

	settings := store.CurrentState(ctx).Settings

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	}

	fmt.Printf("Sensitivity:   %s\n", settings.Sensitivity)
	if settings.InterventionsEnabled {
		fmt.Println("Interventions: enabled")
	} else {
		fmt.Println("Interventions: disabled")
	}
	fmt.Printf("Activities:    %s\n", strings.Join(settings.PreferredActivities, ", "))
	return nil
}

func (c *SettingsCommand) buildPatch() (state.SettingsPatch, bool, error) {
	var patch state.SettingsPatch
	hasPatch := false

	if c.Sensitivity != "" {
		s := scoring.Sensitivity(c.Sensitivity)
		if !s.Valid() {
			return patch, false, fmt.Errorf("unknown sensitivity: %q", c.Sensitivity)
		}
		patch.Sensitivity = &s
		hasPatch = true
	}

	if c.Interventions != "" {
		var enabled bool
		switch strings.ToLower(c.Interventions) {
		case "on", "true", "yes":
			enabled = true
		case "off", "false", "no":
			enabled = false
		default:
			return patch, false, fmt.Errorf("invalid interventions value: %q (use on or off)", c.Interventions)
		}
		patch.InterventionsEnabled = &enabled
		hasPatch = true
	}

	if len(c.Activities) > 0 {
		activities := c.Activities
		patch.PreferredActivities = &activities
		hasPatch = true
	}

	return patch, hasPatch, nil
}
