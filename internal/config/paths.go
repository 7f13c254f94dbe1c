package config

import (
	"os"
	"path/filepath"
)

const (
	EnvDir     = "GROUPSORT_CONFIG_DIR"
	appDirName = "groupsort"
)

// Dir resolves the config directory. GROUPSORT_CONFIG_DIR wins, then the
// user config dir, then a dot directory under home.
func Dir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appDirName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appDirName)
	}
	return "." + appDirName
}

func resolveDir(dir string) string {
	if dir != "" {
		return dir
	}
	return Dir()
}

func ThemeDir(dir string) string {
	return filepath.Join(resolveDir(dir), "themes")
}

func HistoryPath(dir string) string {
	return filepath.Join(resolveDir(dir), "history.db")
}

func LogPath(dir string) string {
	return filepath.Join(resolveDir(dir), "groupsort.log")
}
