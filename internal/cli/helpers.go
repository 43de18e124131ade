package cli

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/state"
)

// loadConfig resolves the config file: an explicit --config path must
// exist; otherwise the default path is created on first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// openStore opens the burnwatch database, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(cfg *config.Config, logger *zap.Logger) (*state.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := state.NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := state.NewSQLiteStore(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// newLogger builds a zap logger per the logging config. Verbose output
// forces debug level on stderr regardless of the configured file sink.
func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Logging.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)

	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zc.OutputPaths = []string{"stderr"}
	} else if logPath, err := cfg.LogPath(); err != nil {
		return nil, err
	} else if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zc.OutputPaths = []string{logPath}
	}

	return zc.Build()
}

// checkDaemon attempts an HTTP GET to the daemon health endpoint.
// Returns true if the daemon responds within 1 second.
func checkDaemon(cfg *config.Config) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s:%d/health", cfg.Daemon.Host, cfg.Daemon.Port))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// databaseSize returns the database file size in bytes. For in-memory
// databases it falls back to page_count * page_size.
func databaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
