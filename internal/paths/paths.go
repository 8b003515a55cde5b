package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-project and per-user data directory name.
	DataDirName = ".qdixon"
	// HomeEnvVar overrides the per-user data directory.
	HomeEnvVar = "QDIXON_HOME"
	// ConfigFileName is the configuration file inside a project data directory.
	ConfigFileName = "config.json"
	// HistoryDirName holds the analysis history database.
	HistoryDirName = "history"
)

// GetHome returns the per-user data directory: $QDIXON_HOME, or ~/.qdixon.
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return ExpandHome(home)
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, DataDirName), nil
}

// GetHistoryDir returns the directory of the history database. An explicit dir
// wins; otherwise it lives under GetHome.
func GetHistoryDir(dir string) (string, error) {
	if dir != "" {
		return ExpandHome(dir)
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, HistoryDirName), nil
}

// GetProjectDataDir returns <root>/.qdixon.
func GetProjectDataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// GetConfigPath returns <root>/.qdixon/config.json.
func GetConfigPath(root string) string {
	return filepath.Join(GetProjectDataDir(root), ConfigFileName)
}

// EnsureDir creates dir (and parents) if missing and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, strings.TrimPrefix(path, "~")), nil
}
