package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/coordinator"
	"github.com/runnerr0/burnwatch/internal/daemon"
	"github.com/runnerr0/burnwatch/internal/intervention"
	"github.com/runnerr0/burnwatch/internal/metrics"
	"github.com/runnerr0/burnwatch/internal/scoring"
)

// Execute implements the go-flags Commander interface for StartCommand.
// It builds the full component graph and serves until SIGINT/SIGTERM.
func (c *StartCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Port > 0 {
		cfg.Daemon.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}

	logger, err := newLogger(cfg, c.globals != nil && c.globals.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	metricsStore := metrics.NewStore(time.Now())
	calc := scoring.NewCalculator(metricsStore)
	interventions := intervention.NewManager(thresholdsFromConfig(cfg), nil, logger)

	coord := coordinator.New(metricsStore, calc, store, interventions, logger, coordinator.Options{
		Debounce:         time.Duration(cfg.Tracking.DebounceMillis) * time.Millisecond,
		SweepInterval:    time.Duration(cfg.Tracking.SweepIntervalHours) * time.Hour,
		AutoSaveInterval: time.Hour,
		BreakTick:        time.Duration(cfg.Intervention.BreakTickSeconds) * time.Second,
		IgnoredDomains:   cfg.Tracking.IgnoredDomains,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := coord.Start(ctx); err != nil {
		return fmt.Errorf("start coordinator: %w", err)
	}

	logger.Info("burnwatch daemon starting",
		zap.String("version", c.version),
		zap.Int("port", cfg.Daemon.Port),
	)

	srv := daemon.NewServer(cfg.Daemon, coord, store, logger)
	err = srv.Run(ctx)

	stop()
	coord.Wait()
	return err
}

func thresholdsFromConfig(cfg *config.Config) intervention.Thresholds {
	return intervention.Thresholds{
		Severe:           cfg.Intervention.SevereThreshold,
		Moderate:         cfg.Intervention.ModerateThreshold,
		SevereCooldown:   time.Duration(cfg.Intervention.SevereCooldownMinutes) * time.Minute,
		ModerateCooldown: time.Duration(cfg.Intervention.ModerateCooldownMinutes) * time.Minute,
	}
}
