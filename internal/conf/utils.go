// conf/utils.go helpers for resolving config and data paths
package conf

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaultConfigPaths returns the list of directories searched for the
// configuration file, in priority order: the current directory first, then
// the user's config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configPaths := []string{"."}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting user config directory: %w", err)
	}
	configPaths = append(configPaths, filepath.Join(userConfigDir, "gignote-go"))

	return configPaths, nil
}

// GetBasePath expands a possibly relative directory against the current
// working directory and ensures it exists.
func GetBasePath(path string) string {
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		// Fall back to the path as given, callers surface open errors
		return path
	}
	return path
}
