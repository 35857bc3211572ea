package sandbox

import (
	"time"
)

// Config defines sandbox configuration
type Config struct {
	Whitelist        []string      // Ambient names that fall through to the host
	Timeout          time.Duration // Execution timeout, zero disables it
	MaxCallStackSize int           // goja call stack limit, zero keeps the engine default
	EnableConsole    bool          // Install the host console binding
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error, debug
	Message string    // Log message
	Module  string    // Module that was executing, if known
	Time    time.Time // Timestamp
}

// ConsoleName is the ambient binding whitelisted by default.
const ConsoleName = "console"

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Whitelist:        []string{ConsoleName},
		Timeout:          0,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}
