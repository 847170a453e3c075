package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SeekerHome returns seeker's home directory, creating it if needed.
// Priority order:
//  1. SEEKER_HOME environment variable (if set)
//  2. ~/.seeker under the user's home directory
func SeekerHome() (string, error) {
	if home := os.Getenv("SEEKER_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create seeker home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	seekerHome := filepath.Join(userHome, ".seeker")
	if err := os.MkdirAll(seekerHome, 0755); err != nil {
		return "", fmt.Errorf("create seeker home directory: %w", err)
	}

	return seekerHome, nil
}

// ConfigPath returns the absolute path of the settings file:
// $SEEKER_HOME/config.yaml.
func ConfigPath() (string, error) {
	home, err := SeekerHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// HistoryDBPath returns the absolute path of the run-history database:
// $SEEKER_HOME/history.db.
func HistoryDBPath() (string, error) {
	home, err := SeekerHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
