package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/state"
)

// trendEntryJSON is one hourly bucket in the trend output.
type trendEntryJSON struct {
	Hour  string  `json:"hour"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Execute implements the go-flags Commander interface for TrendCommand.
func (c *TrendCommand) Execute(args []string) error {
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

// executeWithStore runs trend against a provided store (for testing).
func (c *TrendCommand) executeWithStore(store state.Store) error {
	st := store.CurrentState(context.Background())

	keys := make([]string, 0, len(st.TrendData))
	for k := range st.TrendData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if c.Hours > 0 && len(keys) > c.Hours {
		keys = keys[len(keys)-c.Hours:]
	}

	entries := make([]trendEntryJSON, 0, len(keys))
	for _, k := range keys {
		label := k
		if i := strings.IndexByte(k, 'T'); i >= 0 {
			label = k[i+1:] + ":00"
		}
		entries = append(entries, trendEntryJSON{
			Hour:  k,
			Label: label,
			Score: st.TrendData[k].Score,
		})
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No trend data recorded yet.")
		return nil
	}

	for _, e := range entries {
		bar := strings.Repeat("#", int(e.Score+0.5))
		fmt.Printf("%s  %4.1f  %s\n", e.Label, e.Score, bar)
	}
	return nil
}
