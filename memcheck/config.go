package memcheck

import "time"

// File suffixes the orchestrators care about.
const (
	SourceSuffix = ".c"
	ExeSuffix    = ".exe"
)

// Config holds the external tool commands and invocation timeouts.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	Compiler string // native C compiler command
	Checker  string // native memory checker command
	WSL      string // WSL launcher command

	ProbeTimeout   time.Duration // version/status queries
	CompileTimeout time.Duration
	CheckTimeout   time.Duration
	RunTimeout     time.Duration // basic execution fallback
}

// DefaultConfig returns the standard toolchain configuration.
func DefaultConfig() Config {
	return Config{
		Compiler:       "gcc",
		Checker:        "valgrind",
		WSL:            "wsl",
		ProbeTimeout:   5 * time.Second,
		CompileTimeout: 30 * time.Second,
		CheckTimeout:   30 * time.Second,
		RunTimeout:     10 * time.Second,
	}
}
