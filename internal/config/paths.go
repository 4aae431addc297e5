// Package config reads kassa settings from viper and checks user roles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// userHomeDir is swapped in tests.
var userHomeDir = os.UserHomeDir

// ExpandPath resolves a leading ~ and $VAR references in a configured path.
// A relative result is made absolute against the working directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %q: %w", path, err)
		}
		path = home + path[1:]
	}

	path = os.ExpandEnv(path)
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %q: %w", path, err)
		}
		path = abs
	}
	return filepath.Clean(path), nil
}

// xdgDir returns $env when it holds an absolute path, else ~/fallback.
func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, fallback), nil
}

// DefaultConfigDir returns the directory holding config.yaml.
func DefaultConfigDir() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kassa"), nil
}

func defaultDataDir() (string, error) {
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kassa"), nil
}
