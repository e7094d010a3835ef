package config

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.convsync.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".convsync")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DBPath returns the conversation store path under the data dir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "convsync.db")
}

// LogDir returns the log directory under the data dir.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the daemon log file path under the data dir.
func LogPath(dataDir string) string {
	return filepath.Join(LogDir(dataDir), "convsyncd.log")
}

// EnsureDirs creates the data directory tree with proper permissions.
func EnsureDirs(dataDir string) error {
	dirs := []string{
		dataDir,
		LogDir(dataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
