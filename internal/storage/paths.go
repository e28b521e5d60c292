// Package storage persists perft and transposition-table benchmark run
// records in a local BadgerDB, so regressions between runs are visible.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chesscore"

// DataDir resolves and creates the per-user data directory for the
// application: the platform's conventional data root plus the app name.
func DataDir() (string, error) {
	root, err := dataRoot()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(root, appName))
}

// DatabaseDir resolves and creates the directory holding the BadgerDB
// database, a "db" subdirectory of DataDir.
func DatabaseDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

// dataRoot picks the platform data root, honoring the conventional
// environment overrides before falling back to a home-relative default.
func dataRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return homeRelative("AppData", "Roaming")
	case "darwin":
		return homeRelative("Library", "Application Support")
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		return homeRelative(".local", "share")
	}
}

func homeRelative(parts ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, parts...)...), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
