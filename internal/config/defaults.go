package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/burnwatch",
			SQLiteFile: "burnwatch.db",
		},
		Daemon: DaemonConfig{
			Host:           "127.0.0.1",
			Port:           8726,
			MaxRequestSize: 1048576,
		},
		Tracking: TrackingConfig{
			RetentionHours:     24,
			SweepIntervalHours: 1,
			DebounceMillis:     1000,
			IgnoredDomains:     DefaultIgnoredDomains(),
		},
		Intervention: InterventionConfig{
			SevereThreshold:         7.5,
			ModerateThreshold:       5.0,
			SevereCooldownMinutes:   5,
			ModerateCooldownMinutes: 3,
			BreakTickSeconds:        60,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "burnwatch.log",
		},
	}
}
