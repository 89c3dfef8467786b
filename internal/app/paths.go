package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "ahaar"
	dbFileName     = "cache.db"
	configFileName = "config.toml"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "AHAAR_CONFIG"

func DefaultConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, configFileName), nil
}

func DefaultDBPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}
