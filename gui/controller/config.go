package controller

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kacebover/memleak-detector/memcheck"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Tool commands; empty values fall back to the defaults
	GCCCommand      string `json:"gcc_command"`
	ValgrindCommand string `json:"valgrind_command"`
	WSLCommand      string `json:"wsl_command"`

	// Timeouts in seconds
	ProbeTimeoutSec   int `json:"probe_timeout_sec"`
	CompileTimeoutSec int `json:"compile_timeout_sec"`
	CheckTimeoutSec   int `json:"check_timeout_sec"`
	RunTimeoutSec     int `json:"run_timeout_sec"`

	// UI settings
	ShowNotifications bool `json:"show_notifications"`

	// Window settings
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`

	// Recent source files
	RecentFiles []string `json:"recent_files"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	base := memcheck.DefaultConfig()

	return &AppConfig{
		GCCCommand:      base.Compiler,
		ValgrindCommand: base.Checker,
		WSLCommand:      base.WSL,

		ProbeTimeoutSec:   int(base.ProbeTimeout / time.Second),
		CompileTimeoutSec: int(base.CompileTimeout / time.Second),
		CheckTimeoutSec:   int(base.CheckTimeout / time.Second),
		RunTimeoutSec:     int(base.RunTimeout / time.Second),

		ShowNotifications: true,

		WindowWidth:  900,
		WindowHeight: 700,

		RecentFiles: []string{},
	}
}

// getConfigDir returns the configuration directory path
func getConfigDir() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, "Library", "Application Support")
	default: // linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
	}

	appConfigDir := filepath.Join(configDir, "MemleakDetector")
	_ = os.MkdirAll(appConfigDir, 0755)

	return appConfigDir
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	return filepath.Join(getConfigDir(), "config.json")
}

// LoadConfig loads configuration from disk or returns defaults
func LoadConfig() *AppConfig {
	return LoadConfigFrom(getConfigPath())
}

// LoadConfigFrom loads configuration from an explicit path
func LoadConfigFrom(path string) *AppConfig {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig()
	}

	config.ValidateConfig()
	return config
}

// SaveConfig saves configuration to disk
func SaveConfig(config *AppConfig) error {
	return SaveConfigTo(getConfigPath(), config)
}

// SaveConfigTo saves configuration to an explicit path
func SaveConfigTo(path string, config *AppConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AddRecentFile adds a source file to the recent list
func (c *AppConfig) AddRecentFile(path string) {
	newFiles := make([]string, 0, len(c.RecentFiles)+1)
	newFiles = append(newFiles, path)

	for _, f := range c.RecentFiles {
		if f != path {
			newFiles = append(newFiles, f)
		}
	}

	// Keep only last 10
	if len(newFiles) > 10 {
		newFiles = newFiles[:10]
	}

	c.RecentFiles = newFiles
}

// ValidateConfig validates and normalizes configuration values
func (c *AppConfig) ValidateConfig() {
	if c.GCCCommand == "" {
		c.GCCCommand = "gcc"
	}
	if c.ValgrindCommand == "" {
		c.ValgrindCommand = "valgrind"
	}
	if c.WSLCommand == "" {
		c.WSLCommand = "wsl"
	}

	clamp := func(v *int, min, max int) {
		if *v < min {
			*v = min
		}
		if *v > max {
			*v = max
		}
	}
	clamp(&c.ProbeTimeoutSec, 1, 60)
	clamp(&c.CompileTimeoutSec, 1, 600)
	clamp(&c.CheckTimeoutSec, 1, 600)
	clamp(&c.RunTimeoutSec, 1, 600)

	if c.WindowWidth < 640 {
		c.WindowWidth = 640
	}
	if c.WindowHeight < 480 {
		c.WindowHeight = 480
	}
}

// ToolConfig converts the persisted settings into a toolchain configuration
func (c *AppConfig) ToolConfig() memcheck.Config {
	return memcheck.Config{
		Compiler: c.GCCCommand,
		Checker:  c.ValgrindCommand,
		WSL:      c.WSLCommand,

		ProbeTimeout:   time.Duration(c.ProbeTimeoutSec) * time.Second,
		CompileTimeout: time.Duration(c.CompileTimeoutSec) * time.Second,
		CheckTimeout:   time.Duration(c.CheckTimeoutSec) * time.Second,
		RunTimeout:     time.Duration(c.RunTimeoutSec) * time.Second,
	}
}

// Clone creates a deep copy of the config
func (c *AppConfig) Clone() *AppConfig {
	clone := *c

	if c.RecentFiles != nil {
		clone.RecentFiles = make([]string, len(c.RecentFiles))
		copy(clone.RecentFiles, c.RecentFiles)
	}

	return &clone
}
