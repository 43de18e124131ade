package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/state"
)

// reportJSON is the JSON output structure for the report command.
type reportJSON struct {
	Sessions      int     `json:"sessions"`
	AverageScore  float64 `json:"average_score"`
	PeakScore     float64 `json:"peak_score"`
	PeakAt        string  `json:"peak_at,omitempty"`
	VideosWatched int     `json:"videos_watched"`
	VideoMinutes  int     `json:"video_minutes"`
	Binges        int     `json:"binges"`
}

// Execute implements the go-flags Commander interface for ReportCommand.
// With submit flags it posts a video-activity report to the running daemon
// (the fallback path when the content script cannot reach it directly);
// otherwise it prints the stored summary.
func (c *ReportCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	if c.Videos > 0 || c.Seconds > 0 || c.Binge {
		return c.submit(cfg)
	}

	store, db, err := openStore(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store)
}

// submit posts the report to the daemon's event endpoint.
func (c *ReportCommand) submit(cfg *config.Config) error {
	body, err := json.Marshal(map[string]any{
		"type": "youtube_activity",
		"data": map[string]any{
			"videosWatched": c.Videos,
			"timeSpent":     c.Seconds,
			"isBinge":       c.Binge,
		},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s:%d/events", cfg.Daemon.Host, cfg.Daemon.Port)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("daemon not reachable: %w", err)
	}
	defer resp.Body.Close()

	var ack struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	if ack.Status == "error" {
		return fmt.Errorf("daemon rejected report: %s", ack.Error)
	}

	fmt.Printf("Report %s.\n", ack.Status)
	return nil
}

// executeWithStore runs report against a provided store (for testing).
func (c *ReportCommand) executeWithStore(store state.Store) error {
	ctx := context.Background()
	st := store.CurrentState(ctx)

	out := reportJSON{Sessions: len(st.Sessions)}

	var sum float64
	for _, s := range st.Sessions {
		sum += s.Score
		if s.Score > out.PeakScore {
			out.PeakScore = s.Score
			out.PeakAt = s.Timestamp.UTC().Format(time.RFC3339)
		}
	}
	if len(st.Sessions) > 0 {
		out.AverageScore = sum / float64(len(st.Sessions))
	}

	snap, err := store.LoadMetricsSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load metrics snapshot: %w", err)
	}
	if snap != nil {
		m := metrics.NewStore(time.Now())
		m.Restore(*snap)
		video := m.Video()
		out.VideosWatched = video.VideosWatched
		out.VideoMinutes = m.VideoMinutes()
		out.Binges = video.RelatedBinges
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("Burnwatch Report")
	fmt.Println("================")
	fmt.Printf("Sessions:       %d\n", out.Sessions)
	if out.Sessions > 0 {
		fmt.Printf("Average score:  %.1f\n", out.AverageScore)
		fmt.Printf("Peak score:     %.1f at %s\n", out.PeakScore, out.PeakAt)
	}
	fmt.Println()
	fmt.Printf("Videos watched: %d\n", out.VideosWatched)
	fmt.Printf("Video minutes:  %d\n", out.VideoMinutes)
	fmt.Printf("Binge sessions: %d\n", out.Binges)
	return nil
}
