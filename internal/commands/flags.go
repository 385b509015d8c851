package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/taskboard/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// BaseURL and Token override the config file when set.
	BaseURL string
	Token   string

	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskboard", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/taskboard/taskboard.log
// On Linux: $XDG_STATE_HOME/taskboard/taskboard.log (defaults to ~/.local/state/taskboard/taskboard.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "taskboard", "taskboard.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "taskboard", "taskboard.log")
	}

	return filepath.Join(home, ".local", "state", "taskboard", "taskboard.log")
}
