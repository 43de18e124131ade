package config

import "path/filepath"

// DataDir returns the expanded storage directory.
func (c *Config) DataDir() (string, error) {
	return expandPath(c.Storage.Path)
}

// DatabasePath returns the absolute path of the sqlite database file.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// LogPath returns the absolute path of the log file, or "" when file
// logging is disabled.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Logging.File), nil
}
