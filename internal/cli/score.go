package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/scoring"
	"github.com/runnerr0/burnwatch/internal/state"
)

// scoreJSON is the JSON output structure for the score command.
type scoreJSON struct {
	Score          float64 `json:"score"`
	Sensitivity    string  `json:"sensitivity"`
	VelocityScore  float64 `json:"velocity_score"`
	AttentionScore float64 `json:"attention_score"`
	VideoScore     float64 `json:"video_score"`
	TabsPerHour    int     `json:"tabs_per_hour"`
	AvgSpanMinutes float64 `json:"avg_span_minutes"`
	VideoMinutes   int     `json:"video_minutes"`
	Binges         int     `json:"binges"`
}

// Execute implements the go-flags Commander interface for ScoreCommand.
func (c *ScoreCommand) Execute(args []string) error {
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

// executeWithStore runs score against a provided store (for testing).
func (c *ScoreCommand) executeWithStore(store state.Store, now time.Time) error {
	ctx := context.Background()

	sensitivity := store.CurrentState(ctx).Settings.Sensitivity
	if c.Sensitivity != "" {
		sensitivity = scoring.Sensitivity(c.Sensitivity)
		if !sensitivity.Valid() {
			return fmt.Errorf("unknown sensitivity: %q", c.Sensitivity)
		}
	}

	metricsStore := metrics.NewStore(now)
	snap, err := store.LoadMetricsSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load metrics snapshot: %w", err)
	}
	if snap != nil {
		metricsStore.Restore(*snap)
	}

	video := metricsStore.Video()
	out := scoreJSON{
		Sensitivity:    string(sensitivity),
		VelocityScore:  scoring.VelocityScore(metricsStore.HourlyTabRate(now)),
		AttentionScore: scoring.AttentionScore(metricsStore.AvgAttentionSpanMinutes(now)),
		VideoScore:     scoring.VideoScore(video),
		TabsPerHour:    metricsStore.HourlyTabRate(now),
		AvgSpanMinutes: metricsStore.AvgAttentionSpanMinutes(now),
		VideoMinutes:   metricsStore.VideoMinutes(),
		Binges:         video.RelatedBinges,
	}
	out.Score = scoring.Composite(out.VelocityScore, out.AttentionScore, out.VideoScore, sensitivity)

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Burnout score: %.1f / 10 (%s)\n", out.Score, out.Sensitivity)
	fmt.Println()
	fmt.Printf("  Tab velocity:   %.0f  (%d tabs/hour)\n", out.VelocityScore, out.TabsPerHour)
	fmt.Printf("  Attention:      %.0f  (%.1f min avg span)\n", out.AttentionScore, out.AvgSpanMinutes)
	fmt.Printf("  Video:          %.1f  (%d min watched, %d binges)\n", out.VideoScore, out.VideoMinutes, out.Binges)
	return nil
}
